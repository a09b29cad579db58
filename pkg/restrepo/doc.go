// Package restrepo provides typed, composable repositories over REST
// resources that follow Django REST framework conventions.
//
// # Overview
//
// A ResourceAPI turns a RequestContext into exactly one call on an injected
// HTTPClient, building list and detail URLs from a resource root. A
// Repository pairs a ResourceAPI with a Serializer and exposes the CRUD
// capabilities Get, List, Create, Update and Delete. Each capability is its
// own embeddable type, so a read-only repository simply leaves the others
// out:
//
//	type UserReader struct {
//	  restrepo.Retriever[User]
//	  restrepo.Lister[User]
//	}
//
// Getting a repository
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/restrepo/pkg/restclient"
//	  "github.com/fivetwenty-io/restrepo/pkg/restrepo"
//	  "github.com/fivetwenty-io/restrepo/pkg/restrepo/serializer"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  client, err := restclient.New(&restrepo.Config{BaseURL: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  api, err := restrepo.NewResourceAPI(client, restrepo.Root("/users"),
//	    restrepo.WithPagination(restrepo.NewPageNumberPagination(restrepo.PageNumberOptions{})))
//	  if err != nil { log.Fatal(err) }
//
//	  users, err := restrepo.NewRepository[restrepo.Model](api, userSerializer)
//	  if err != nil { log.Fatal(err) }
//
//	  page, meta, err := users.List(ctx, 1, restrepo.WithQuery("status", "active"))
//	  if err != nil { log.Fatal(err) }
//	  _, _ = page, meta
//	}
//
// # Request contexts
//
// Every call builds a fresh RequestContext with BuildContext, merging the
// repository's own partial (pk, page, data) with the caller's partials.
// Later partials win per key. Query parameters keep their insertion order.
//
// # Pagination
//
// NoPagination expects a bare JSON array. PageNumberPagination and
// LimitOffsetPagination speak DRF's {"count", "results"} envelope and keep
// next/previous links in Meta. ListAll walks every page.
//
// # Errors
//
// ErrMissingPK is returned before any I/O when a detail operation has no
// primary key. Transport errors are returned unchanged; the default
// transport reports non-2xx responses as *ResponseError, and IsNotFound,
// IsUnauthorized and IsForbidden branch on the common cases.
package restrepo
