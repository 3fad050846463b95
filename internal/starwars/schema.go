// Package starwars is an example schema over the characters of the original
// trilogy. It exercises interfaces, unions, enums, input objects, arguments
// with defaults, a mutation and error rescue.
package starwars

import (
	"context"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	rescue "github.com/hanpama/gqlcore/internal/rescue"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// Fleet looks starships up. *Store serves them from memory and
// *FleetClient from a remote fleet service.
type Fleet interface {
	Starship(ctx context.Context, id string) (*Starship, error)
}

// Config returns the schema configuration over store, resolving starships
// through fleet. Callers may add middleware or change the strategy before
// passing it to schema.New; the rescue middleware converting lookup failures
// into field errors is already installed.
func Config(store *Store, fleet Fleet) schema.Config {
	episodeEnum := schema.NewEnum("Episode", "One of the films in the Star Wars Trilogy").
		AddValue("NEWHOPE", NewHope, "Released in 1977.").
		AddValue("EMPIRE", Empire, "Released in 1980.").
		AddValue("JEDI", Jedi, "Released in 1983.")

	lengthUnit := schema.NewEnum("LengthUnit", "Units of height").
		AddValue("METER", nil, "The standard unit around the world").
		AddValue("FOOT", nil, "Primarily used in the United States")

	character := schema.NewInterface("Character", "A character in the Star Wars Trilogy")
	character.AddField(
		schema.NewField("id", schema.NonNullOf(schema.ID), nil).Describe("The id of the character."),
		schema.NewField("name", schema.NonNullOf(schema.String), nil).Describe("The name of the character."),
		schema.NewField("friends", schema.ListOf(character), nil).
			Describe("The friends of the character, or an empty list if they have none."),
		schema.NewField("appearsIn", schema.NonNullOf(schema.ListOf(episodeEnum)), nil).
			Describe("Which movies they appear in."),
	)

	starship := schema.NewObject("Starship", "").AddField(
		schema.NewField("id", schema.NonNullOf(schema.ID), nil),
		schema.NewField("name", schema.NonNullOf(schema.String), nil),
		schema.NewField("length", schema.Float, convertLength(func(src any) float64 { return src.(*Starship).Length })).
			AddArgument(schema.NewInputValue("unit", lengthUnit).SetDefault("METER")),
	)

	friends := func(_ context.Context, src any, _ map[string]any) (any, error) {
		switch c := src.(type) {
		case *Human:
			return store.Friends(c.FriendIDs), nil
		case *Droid:
			return store.Friends(c.FriendIDs), nil
		}
		return nil, nil
	}

	human := schema.NewObject("Human", "A humanoid creature in the Star Wars universe.").AddField(
		schema.NewField("id", schema.NonNullOf(schema.ID), nil),
		schema.NewField("name", schema.NonNullOf(schema.String), nil),
		schema.NewField("friends", schema.ListOf(character), friends),
		schema.NewField("appearsIn", schema.NonNullOf(schema.ListOf(episodeEnum)), nil),
		schema.NewField("homePlanet", schema.String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			if p := src.(*Human).HomePlanet; p != "" {
				return p, nil
			}
			return nil, nil
		}).Describe("The home planet of the human, or null if unknown."),
		schema.NewField("height", schema.Float, convertLength(func(src any) float64 { return src.(*Human).Height })).
			AddArgument(schema.NewInputValue("unit", lengthUnit).SetDefault("METER")),
		schema.NewField("mass", schema.Float, nil).Deprecate("Weight is not measured consistently."),
		schema.NewField("starships", schema.ListOf(starship), func(ctx context.Context, src any, _ map[string]any) (any, error) {
			var out []*Starship
			for _, id := range src.(*Human).StarshipIDs {
				ss, err := fleet.Starship(ctx, id)
				if err != nil {
					return nil, err
				}
				out = append(out, ss)
			}
			return out, nil
		}),
	).Implements(character)

	droid := schema.NewObject("Droid", "A mechanical creature in the Star Wars universe.").AddField(
		schema.NewField("id", schema.NonNullOf(schema.ID), nil),
		schema.NewField("name", schema.NonNullOf(schema.String), nil),
		schema.NewField("friends", schema.ListOf(character), friends),
		schema.NewField("appearsIn", schema.NonNullOf(schema.ListOf(episodeEnum)), nil),
		schema.NewField("primaryFunction", schema.String, nil).Describe("The primary function of the droid."),
	).Implements(character)

	searchResult := schema.NewUnion("SearchResult", "", human, droid, starship)

	review := schema.NewObject("Review", "Represents a review for a movie").AddField(
		schema.NewField("episode", episodeEnum, nil),
		schema.NewField("stars", schema.NonNullOf(schema.Int), nil),
		schema.NewField("commentary", schema.String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			if c := src.(*Review).Commentary; c != "" {
				return c, nil
			}
			return nil, nil
		}),
	)

	reviewInput := schema.NewInputObject("ReviewInput", "The input object sent when someone is creating a new review").
		AddInputField(
			schema.NewInputValue("stars", schema.NonNullOf(schema.Int)).Describe("0-5 stars"),
			schema.NewInputValue("commentary", schema.String).Describe("Comment about the movie, optional"),
		)

	episodeArg := func(args map[string]any) Episode {
		e, _ := args["episode"].(Episode)
		return e
	}

	query := schema.NewObject("Query", "").AddField(
		schema.NewField("hero", character, func(_ context.Context, _ any, args map[string]any) (any, error) {
			return store.Hero(episodeArg(args)), nil
		}).AddArgument(schema.NewInputValue("episode", episodeEnum).
			Describe("If omitted, returns the hero of the whole saga.")),
		schema.NewField("character", character, func(_ context.Context, _ any, args map[string]any) (any, error) {
			return store.Character(args["id"].(string))
		}).AddArgument(schema.NewInputValue("id", schema.NonNullOf(schema.ID))),
		schema.NewField("human", human, func(_ context.Context, _ any, args map[string]any) (any, error) {
			if h := store.Human(args["id"].(string)); h != nil {
				return h, nil
			}
			return nil, nil
		}).AddArgument(schema.NewInputValue("id", schema.NonNullOf(schema.ID))),
		schema.NewField("droid", droid, func(_ context.Context, _ any, args map[string]any) (any, error) {
			if d := store.Droid(args["id"].(string)); d != nil {
				return d, nil
			}
			return nil, nil
		}).AddArgument(schema.NewInputValue("id", schema.NonNullOf(schema.ID))),
		schema.NewField("starship", starship, func(ctx context.Context, _ any, args map[string]any) (any, error) {
			return fleet.Starship(ctx, args["id"].(string))
		}).AddArgument(schema.NewInputValue("id", schema.NonNullOf(schema.ID))),
		schema.NewField("search", schema.ListOf(searchResult), func(_ context.Context, _ any, args map[string]any) (any, error) {
			return store.Search(args["text"].(string)), nil
		}).AddArgument(schema.NewInputValue("text", schema.NonNullOf(schema.String))),
		schema.NewField("reviews", schema.ListOf(review), func(_ context.Context, _ any, args map[string]any) (any, error) {
			return store.Reviews(episodeArg(args)), nil
		}).AddArgument(schema.NewInputValue("episode", schema.NonNullOf(episodeEnum))),
	)

	mutation := schema.NewObject("Mutation", "").AddField(
		schema.NewField("createReview", review, func(_ context.Context, _ any, args map[string]any) (any, error) {
			input := args["review"].(map[string]any)
			r := &Review{Episode: episodeArg(args), Stars: input["stars"].(int)}
			if r.Stars < 0 || r.Stars > 5 {
				return nil, gqlerrors.New("stars must be between 0 and 5, got %d", r.Stars).
					WithExtensions(map[string]any{"code": "BAD_USER_INPUT"})
			}
			if c, ok := input["commentary"].(string); ok {
				r.Commentary = c
			}
			store.AddReview(r)
			return r, nil
		}).AddArgument(
			schema.NewInputValue("episode", episodeEnum).SetDefault("NEWHOPE"),
			schema.NewInputValue("review", schema.NonNullOf(reviewInput)),
		),
	)

	rescuer := rescue.RescueGRPC(rescue.New().On(rescue.Is(ErrNotFound), notFound))

	return schema.Config{
		Query:      query,
		Mutation:   mutation,
		Middleware: []schema.Middleware{rescuer.Middleware()},
	}
}

// NewSchema builds the example schema over store with additional
// middleware, outermost first, wrapped around the rescue middleware.
func NewSchema(store *Store, strategy schema.Strategy, middleware ...schema.Middleware) (*schema.Schema, error) {
	return NewSchemaWithFleet(store, store, strategy, middleware...)
}

// NewSchemaWithFleet is NewSchema with starships resolved through fleet.
func NewSchemaWithFleet(store *Store, fleet Fleet, strategy schema.Strategy, middleware ...schema.Middleware) (*schema.Schema, error) {
	cfg := Config(store, fleet)
	cfg.Strategy = strategy
	cfg.Middleware = append(append([]schema.Middleware(nil), middleware...), cfg.Middleware...)
	return schema.New(cfg)
}

func notFound(_ context.Context, _ *schema.FieldInvocation, err error) *gqlerrors.ExecutionError {
	return gqlerrors.New("%s", err.Error()).WithExtensions(map[string]any{"code": "NOT_FOUND"})
}

const feetPerMeter = 3.28084

func convertLength(meters func(src any) float64) schema.ResolveFunc {
	return func(_ context.Context, src any, args map[string]any) (any, error) {
		m := meters(src)
		if m == 0 {
			return nil, nil
		}
		if args["unit"] == "FOOT" {
			return m * feetPerMeter, nil
		}
		return m, nil
	}
}
