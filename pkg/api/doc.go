// Package api serves a [store.Store] over HTTP.
//
// All routes live under /api and exchange JSON:
//
//	GET    /api/graphs                            list graphs by priority
//	POST   /api/graphs                            create a graph
//	GET    /api/graphs/{graphID}                  full graph document
//	PATCH  /api/graphs/{graphID}                  rename, reprioritise, hide completed
//	DELETE /api/graphs/{graphID}
//	GET    /api/graphs/{graphID}/view             visible projection
//	GET    /api/graphs/{graphID}/layout           positioned projection
//	GET    /api/graphs/{graphID}/render           svg or dot
//	POST   /api/graphs/{graphID}/reduce           transitive reduction
//	POST   /api/graphs/{graphID}/nodes            create a node
//	PATCH  /api/graphs/{graphID}/nodes/{nodeID}
//	DELETE /api/graphs/{graphID}/nodes/{nodeID}   ?keepEdges=true bridges around it
//	POST   /api/graphs/{graphID}/edges            add a sequence edge
//	PUT    /api/graphs/{graphID}/nodes/{nodeID}/parent
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status from [perrors.HTTPStatus].
package api
