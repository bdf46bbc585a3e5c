/*
Package catalog maintains the ordered list of photos being culled.

A catalog is loaded from one directory at a time. Every regular, non-hidden
file with an image extension becomes an [Item], ordered by name, and is
addressed by its position. Positions are only meaningful for the load that
produced them; each load gets a fresh generation ID so clients can tell
when their indices went stale.

Each item carries a culling [Status]. Items start Pending and move to Keep
or Delete on a vote; there is no way back to Pending. Votes are persisted
through a [VoteStore] keyed by directory and file name, so reopening a
folder restores earlier decisions.

The catalog guards its own state with a single RWMutex. Callers resolve an
index to a path and release the catalog before doing anything slow with the
file.
*/
package catalog
