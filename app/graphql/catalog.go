// Package graphql exposes the read-only catalogue as a GraphQL schema.
//
//	{ products(category: "Bags", search: "leather") { id name price seller { businessName } } }
package graphql

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/mogusu300/b2zi-merchant/app/models"
	gql "github.com/mogusu300/b2zi-merchant/pkg/graphql"
)

// Catalog is the subset of the catalogue service the schema reads from.
type Catalog interface {
	ListProducts(ctx context.Context, category, search string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListMerchantProducts(ctx context.Context, merchantID string) ([]models.Product, error)
}

var sellerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Seller",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"businessName": &graphql.Field{Type: graphql.String},
		"ownerName":    &graphql.Field{Type: graphql.String},
		"businessType": &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return product(p).ID, nil
			},
		},
		"sellerId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return product(p).Price.InexactFloat64(), nil
			},
		},
		"category": &graphql.Field{Type: graphql.String},
		"images":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		"colors":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		"types":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"stock":    &graphql.Field{Type: graphql.Int},
		"inStock":  &graphql.Field{Type: graphql.Boolean},
		"createdAt": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return product(p).CreatedAt.UTC().Format(time.RFC3339), nil
			},
		},
		"seller": &graphql.Field{
			Type: sellerType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if s := product(p).Seller; s != nil {
					return *s, nil
				}
				return nil, nil
			},
		},
	},
})

func product(p graphql.ResolveParams) models.Product {
	switch v := p.Source.(type) {
	case models.Product:
		return v
	case *models.Product:
		return *v
	}
	return models.Product{}
}

// NewSchema builds the catalogue schema over c.
func NewSchema(c Catalog) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, _ := p.Args["category"].(string)
					search, _ := p.Args["search"].(string)
					return c.ListProducts(p.Context, category, search)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return c.GetProduct(p.Context, id)
				},
			},
			"merchantProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"merchantId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["merchantId"].(string)
					return c.ListMerchantProducts(p.Context, id)
				},
			},
		},
	})
	return gql.NewSchema(query)
}
