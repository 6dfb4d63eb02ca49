package db

import (
	"fmt"

	"github.com/tartanair/va-backend/internal/types"
)

// RouteCatalog is the fixed company route catalog seeded at startup.
var RouteCatalog = []types.Route{
	// Edinburgh
	{ID: 1, Dep: "EGPH", Arr: "EGNM", DistanceNM: 138, Aircraft: "A320"},
	{ID: 2, Dep: "EGPH", Arr: "EGGW", DistanceNM: 267, Aircraft: "A320"},
	{ID: 3, Dep: "EGPH", Arr: "BGGH", DistanceNM: 1487, Aircraft: "A320,A21N"},
	{ID: 4, Dep: "EGPH", Arr: "LEPA", DistanceNM: 1014, Aircraft: "A320,A21N"},
	{ID: 5, Dep: "EGPH", Arr: "EKVG", DistanceNM: 386, Aircraft: "A320"},
	// Glasgow
	{ID: 6, Dep: "EGPF", Arr: "EGNX", DistanceNM: 212, Aircraft: "A320"},
	{ID: 7, Dep: "EGPF", Arr: "EDDF", DistanceNM: 585, Aircraft: "A320,A21N"},
	{ID: 8, Dep: "EGPF", Arr: "EFIV", DistanceNM: 1151, Aircraft: "A320,A21N"},
	{ID: 9, Dep: "EGPF", Arr: "EGSS", DistanceNM: 291, Aircraft: "A320"},
	{ID: 10, Dep: "EGPF", Arr: "GCTS", DistanceNM: 1751, Aircraft: "A320,A21N"},
	{ID: 11, Dep: "EGPF", Arr: "KEWR", DistanceNM: 2799, Aircraft: "A21N,A359"},
	{ID: 12, Dep: "EGPH", Arr: "OMDB", DistanceNM: 3120, Aircraft: "B777-200LR,A359"},
	{ID: 13, Dep: "EGPH", Arr: "KMCO", DistanceNM: 3614, Aircraft: "B77L,A359"},
	{ID: 14, Dep: "EGPF", Arr: "BIKF", DistanceNM: 728, Aircraft: "A320,A21N"},
}

// EnsureRoutes seeds the route catalog if the routes table is empty.
// Safe to call on every startup.
func (c *Client) EnsureRoutes(routes []types.Route) error {
	n, err := c.CountRoutes()
	if err != nil {
		return fmt.Errorf("failed to count routes: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := c.SeedRoutes(routes); err != nil {
		return fmt.Errorf("failed to seed routes: %w", err)
	}
	return nil
}
