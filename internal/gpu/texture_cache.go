// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// UploadMode selects when cache misses reach the device.
type UploadMode uint8

const (
	// UploadDeferred queues texture writes into the frame's single copy pass.
	UploadDeferred UploadMode = iota

	// UploadImmediate writes each texture with its own blocking submission
	// while the frame is being scanned.
	UploadImmediate
)

// String returns the mode name.
func (m UploadMode) String() string {
	switch m {
	case UploadDeferred:
		return "deferred"
	case UploadImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("UploadMode(%d)", m)
	}
}

// Pixels is one image offered by a PixelSource.
type Pixels struct {
	Data     []byte
	Width    uint32
	Height   uint32
	Modified bool
}

// PixelSource supplies images for cache keys.
type PixelSource[K comparable] interface {
	// Pixels returns the current image for key, or false when it is
	// unavailable right now.
	Pixels(key K) (Pixels, bool)

	// Uploaded is called once the image for key is resident on the device.
	Uploaded(key K)
}

// Binding is a resolved texture/sampler pair ready to bind as group 1.
type Binding struct {
	Texture *Texture
	Group   hal.BindGroup
}

// Binder creates and releases group-1 bind groups for textures.
type Binder interface {
	NewBinding(label string, tex *Texture) (*Binding, error)
	ReleaseBinding(b *Binding)
}

// CacheStats are cumulative counters for a TextureCache.
type CacheStats struct {
	Hits      uint64
	Uploads   uint64
	Reuploads uint64
	Fallbacks uint64
	Failures  uint64
	Entries   int
}

type cacheEntry struct {
	binding *Binding
	stale   bool
	queued  bool // write pending in an UploadQueue
}

type retiredBinding struct {
	binding *Binding
	frame   uint64
}

// TextureCacheConfig configures a TextureCache.
type TextureCacheConfig struct {
	Label   string
	Format  gputypes.TextureFormat
	Mode    UploadMode
	Timeout time.Duration
}

// TextureCache maps opaque keys to device textures. Entries are created on
// first use and kept across frames; an entry is re-uploaded only after it is
// marked stale, either by Invalidate or by its source reporting Modified.
// When the source cannot supply an image, the shared fallback binding is
// returned instead of an error.
//
// TextureCache is not safe for concurrent use.
type TextureCache[K comparable] struct {
	device   hal.Device
	queue    hal.Queue
	binder   Binder
	fallback *Binding
	config   TextureCacheConfig

	entries   map[K]*cacheEntry
	graveyard []retiredBinding
	frame     uint64
	stats     CacheStats
}

// NewTextureCache creates an empty cache. fallback is returned for every
// key whose image is unavailable.
func NewTextureCache[K comparable](device hal.Device, queue hal.Queue, binder Binder, fallback *Binding, config TextureCacheConfig) *TextureCache[K] {
	if config.Format == gputypes.TextureFormatUndefined {
		config.Format = gputypes.TextureFormatRGBA8Unorm
	}
	if config.Label == "" {
		config.Label = "ui_texture"
	}
	return &TextureCache[K]{
		device:   device,
		queue:    queue,
		binder:   binder,
		fallback: fallback,
		config:   config,
		entries:  make(map[K]*cacheEntry),
	}
}

// Resolve returns the binding for key, uploading the source image when the
// entry is missing or stale. In deferred mode the write is pushed onto
// uploads; a nil uploads forces an immediate write.
func (c *TextureCache[K]) Resolve(key K, source PixelSource[K], uploads *UploadQueue) *Binding {
	entry := c.entries[key]

	var (
		px Pixels
		ok bool
	)
	if source != nil {
		px, ok = source.Pixels(key)
	}
	if ok && px.Modified && entry != nil && !entry.queued {
		entry.stale = true
	}

	if entry != nil && !entry.stale {
		c.stats.Hits++
		return entry.binding
	}
	if !ok {
		// A stale entry may hold outdated or never-written pixels.
		c.stats.Fallbacks++
		slogger().Debug("texture unavailable, using fallback", "cache", c.config.Label, "key", key)
		return c.fallback
	}

	binding, err := c.upload(key, entry, px, source, uploads)
	if err != nil {
		c.stats.Failures++
		c.stats.Fallbacks++
		slogger().Warn("texture upload failed, using fallback",
			"cache", c.config.Label, "key", key, "err", err)
		return c.fallback
	}
	return binding
}

// upload (re)creates the entry's texture when needed and writes px into it.
func (c *TextureCache[K]) upload(key K, entry *cacheEntry, px Pixels, source PixelSource[K], uploads *UploadQueue) (*Binding, error) {
	var created, binding *Binding
	if entry != nil {
		binding = entry.binding
	}
	if binding == nil || binding.Texture.Width != px.Width || binding.Texture.Height != px.Height {
		label := fmt.Sprintf("%s_%v", c.config.Label, key)
		tex, err := CreateTexture(c.device, label, px.Width, px.Height, c.config.Format)
		if err != nil {
			return nil, err
		}
		created, err = c.binder.NewBinding(label, tex)
		if err != nil {
			tex.Destroy(c.device)
			return nil, fmt.Errorf("bind texture %s: %w", label, err)
		}
		binding = created
	}

	var err error
	if c.config.Mode == UploadImmediate || uploads == nil {
		err = WriteTexture(c.device, c.queue, binding.Texture, px.Data, c.config.Timeout)
	} else {
		err = uploads.Push(binding.Texture, px.Data, func(ok bool) { c.uploadDone(key, ok, source) })
	}
	if err != nil {
		if created != nil {
			c.release(created)
		}
		return nil, err
	}

	if entry == nil {
		entry = &cacheEntry{}
		c.entries[key] = entry
		c.stats.Uploads++
	} else {
		c.stats.Reuploads++
		if created != nil && entry.binding != nil {
			c.retire(entry.binding)
		}
	}
	entry.binding = binding
	entry.stale = false
	entry.queued = uploads != nil && c.config.Mode != UploadImmediate
	if !entry.queued && source != nil {
		source.Uploaded(key)
	}
	return binding, nil
}

// uploadDone settles a deferred write. A write that never reached the device
// leaves the entry stale so the next frame uploads it again.
func (c *TextureCache[K]) uploadDone(key K, ok bool, source PixelSource[K]) {
	entry, found := c.entries[key]
	if !found {
		return
	}
	entry.queued = false
	if !ok {
		entry.stale = true
		return
	}
	if source != nil {
		source.Uploaded(key)
	}
}

// Invalidate marks key stale so the next Resolve re-uploads it.
// Returns false if the key has no entry.
func (c *TextureCache[K]) Invalidate(key K) bool {
	entry, ok := c.entries[key]
	if ok {
		entry.stale = true
	}
	return ok
}

// Forget drops the entry for key. Its texture is released once frames that
// may still reference it have finished.
func (c *TextureCache[K]) Forget(key K) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.retire(entry.binding)
}

// Contains reports whether key has a resident entry.
func (c *TextureCache[K]) Contains(key K) bool {
	_, ok := c.entries[key]
	return ok
}

// Fallback returns the binding used for unavailable images.
func (c *TextureCache[K]) Fallback() *Binding { return c.fallback }

// Stats returns the cumulative counters.
func (c *TextureCache[K]) Stats() CacheStats {
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// EndFrame advances the cache's frame counter and releases retired textures
// that can no longer be referenced by in-flight frames.
func (c *TextureCache[K]) EndFrame() {
	c.frame++
	kept := c.graveyard[:0]
	for _, r := range c.graveyard {
		if c.frame >= r.frame+retireFrames {
			c.release(r.binding)
			continue
		}
		kept = append(kept, r)
	}
	clear(c.graveyard[len(kept):])
	c.graveyard = kept
}

// Destroy releases every texture owned by the cache. The fallback binding is
// owned by the caller and left untouched. Safe to call more than once.
func (c *TextureCache[K]) Destroy() {
	for key, entry := range c.entries {
		c.release(entry.binding)
		delete(c.entries, key)
	}
	for _, r := range c.graveyard {
		c.release(r.binding)
	}
	c.graveyard = nil
}

func (c *TextureCache[K]) retire(b *Binding) {
	if b == nil || b == c.fallback {
		return
	}
	c.graveyard = append(c.graveyard, retiredBinding{binding: b, frame: c.frame})
}

func (c *TextureCache[K]) release(b *Binding) {
	if b == nil || b == c.fallback {
		return
	}
	c.binder.ReleaseBinding(b)
	b.Texture.Destroy(c.device)
}
