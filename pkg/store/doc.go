/*
Package store holds the frame graph's edges.

The Store keeps two edge pools, durable and expiring, plus a registry of every frame
name seen. Queries run against a merged View computed fresh on each call, where an
expiring edge shadows a durable edge for the same (parent, child) pair.

Expiry is evaluated lazily: no background sweep ages edges out. An expired edge
stays in the pool and keeps participating in transform resolution; staleness only
shows up as IsValid=false in BuildTree and in Stats.

# Thread-Safety

All Store methods are safe for concurrent use. Views returned by MergedView are
private copies, so readers may hold one across later mutations, but they will not
see those mutations.
*/
package store
