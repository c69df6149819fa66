// Package graphql exposes a read-only query surface over the catalog for
// dashboard widgets that want a single round trip.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/pkg/response"
)

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.String},
		"name_primary":   &graphql.Field{Type: graphql.String},
		"name_secondary": &graphql.Field{Type: graphql.String},
	},
})

var newsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "News",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.String},
		"title_primary":   &graphql.Field{Type: graphql.String},
		"title_secondary": &graphql.Field{Type: graphql.String},
		"category_id":     &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
		"images": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				item, ok := p.Source.(models.News)
				if !ok {
					return nil, nil
				}
				return []string(item.Images), nil
			},
		},
		"price":        &graphql.Field{Type: graphql.Float},
		"price_medium": &graphql.Field{Type: graphql.Float},
		"price_large":  &graphql.Field{Type: graphql.Float},
		"price_family": &graphql.Field{Type: graphql.Float},
		"offers":       &graphql.Field{Type: graphql.Float},
		"created_at":   &graphql.Field{Type: graphql.DateTime},
	},
})

// NewSchema builds the read-only catalog schema over the repositories.
func NewSchema(news *repositories.NewsRepository, categories *repositories.CategoryRepository) (graphql.Schema, error) {
	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"news": &graphql.Field{
				Type: graphql.NewList(newsType),
				Args: graphql.FieldConfigArgument{
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"status":   &graphql.ArgumentConfig{Type: graphql.String},
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"date":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := repositories.NewsFilter{
						Page: 1,
					}
					if page, ok := p.Args["page"].(int); ok {
						filter.Page = page
					}
					if v, ok := p.Args["category"].(string); ok {
						filter.CategoryID = v
					}
					if v, ok := p.Args["status"].(string); ok {
						filter.Status = v
					}
					if v, ok := p.Args["search"].(string); ok {
						filter.Search = v
					}
					if v, ok := p.Args["date"].(string); ok {
						filter.DateBucket = v
					}
					items, _, err := news.List(filter)
					return items, err
				},
			},
			"newsItem": &graphql.Field{
				Type: newsType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return news.FindByID(id)
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return categories.All()
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}

// Handler serves POST /api/graphql requests against the schema.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
