// Package cache provides a generic sharded LRU cache.
//
//	faces := cache.NewSharded[faceKey, *sizedFace](8, hashFaceKey)
//	faces.SetOnEvict(func(_ faceKey, f *sizedFace) { f.Close() })
//	face := faces.GetOrCreate(key, func() *sizedFace { return newSizedFace(key) })
//
// Entries are spread over DefaultShardCount shards, each with its own lock
// and LRU list, so lookups from many goroutines rarely contend.
//
// # Thread Safety
//
// ShardedCache is safe for concurrent use. It must not be copied after
// creation.
package cache
