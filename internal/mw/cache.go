package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// generationKey holds a marker that every Flush removes. A GET only stores its
// response if the marker it saw before running is still in place.
const generationKey = "\x00generation"

type generation struct{ _ byte }

func currentGeneration(store *cache.Cache) *generation {
	if g, found := store.Get(generationKey); found {
		return g.(*generation)
	}
	// Add fails if another request created the marker first.
	_ = store.Add(generationKey, &generation{}, cache.NoExpiration)
	g, _ := store.Get(generationKey)
	gen, _ := g.(*generation)
	return gen
}

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GETs of the same URI from memory for duration.
// Pair it with Invalidate on the routes that change what it serves.
func Cache(store *cache.Cache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := store.Get(key); found && key != generationKey {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		gen := currentGeneration(store)
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if blw.Status() < 200 || blw.Status() >= 300 {
			return
		}
		// A write that started while this GET ran may have made its body stale.
		if !sameGeneration(store, gen) {
			return
		}
		store.Set(key, cachedResponse{
			status:  blw.Status(),
			headers: blw.Header().Clone(),
			body:    blw.body.Bytes(),
		}, duration)
		if !sameGeneration(store, gen) {
			store.Delete(key)
		}
	}
}

func sameGeneration(store *cache.Cache, gen *generation) bool {
	current, found := store.Get(generationKey)
	return found && current == gen
}

// Invalidate drops every cached response when a write starts and again once
// it succeeds, so GETs racing the write never cache what they read.
func Invalidate(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			store.Flush()
		}

		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			store.Flush()
		}
	}
}
