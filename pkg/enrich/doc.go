// Package enrich fills in registry data on catalog entities.
//
// A loaded [catalog.Catalog] only knows what the map data file carries:
// names, owners and grid positions. An [Enricher] fetches the rest from a
// [Registry] on first request and memoizes it on the entity:
//
//	e := enrich.New(cat, enrich.NewMetaCPANRegistry(client), enrich.Options{Timeout: 10 * time.Second})
//	report, err := e.Dependencies(ctx, cat.FindDistroByName("XML::Simple"))
//
// Every cached field is a [catalog.Slot]: concurrent requests for the same
// entity share one registry call, a ready slot never calls again, and a
// failed call leaves the slot retryable without touching other state.
// Module lookups go through a singleflight group so that a module shared by
// many dependency lists is resolved once.
package enrich
