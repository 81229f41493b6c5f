// Command allocdemo exercises all four allocators end to end: it carves a
// fixed byte arena, drives a bitmap pool, a block-list pool, a segregated
// fixed heap, and a page-backed slab through an allocate/free cycle, and
// serves their live free/capacity counts as Prometheus metrics.
package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmxmxh/inos-heap/allocmetrics"
	"github.com/nmxmxh/inos-heap/arena"
	"github.com/nmxmxh/inos-heap/obslog"
)

func main() {
	log := obslog.Default("allocdemo")
	defer log.Sync()

	collector := allocmetrics.NewCollector("inosheap", "pool")
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	runBitmapPool(log, collector)
	runBlockListPool(log, collector)
	runSegregatedHeap(log, collector)
	runSlab(log, collector)

	addr := ":9400"
	log.Info("serving metrics", obslog.String("addr", addr))
	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("metrics server exited", obslog.Err(err))
		os.Exit(1)
	}
}

func runBitmapPool(log *obslog.Logger, collector *allocmetrics.Collector) {
	log = log.With(obslog.String("allocator", "bitmap"))

	buf := make([]byte, 4096)
	pool, err := arena.NewBitmapPool(buf, 64)
	if err != nil {
		log.Error("construction failed", obslog.Err(err))
		return
	}
	collector.Register("bitmap", pool.NumFree, pool.Capacity)

	p := pool.Allocate(arena.Tag(1))
	log.Info("allocated", obslog.Uint32("free", pool.NumFree()), obslog.Uint32("capacity", pool.Capacity()))
	pool.Free(p)
	log.Info("freed", obslog.Uint32("free", pool.NumFree()))
}

func runBlockListPool(log *obslog.Logger, collector *allocmetrics.Collector) {
	log = log.With(obslog.String("allocator", "blocklist"))

	buf := make([]byte, 4096)
	pool, _, err := arena.NewBlockListPool(buf, 48)
	if err != nil {
		log.Error("construction failed", obslog.Err(err))
		return
	}
	capacity := pool.NumFree()
	collector.Register("blocklist", pool.NumFree, func() uint32 { return capacity })

	p := pool.Allocate()
	log.Info("allocated", obslog.Uint32("free", pool.NumFree()))
	arena.Free(p)
	log.Info("freed via static Free", obslog.Uint32("free", pool.NumFree()))
}

func runSegregatedHeap(log *obslog.Logger, collector *allocmetrics.Collector) {
	log = log.With(obslog.String("allocator", "segheap"))

	buf := make([]byte, 8192)
	heap, err := arena.NewSegregatedFixedHeap(buf, []arena.SizeClass{
		{BlockSize: 16, Count: 8},
		{BlockSize: 64, Count: 8},
		{BlockSize: 256, Count: 4},
	})
	if err != nil {
		log.Error("construction failed", obslog.Err(err))
		return
	}
	for i, size := range []uint32{16, 64, 256} {
		i := i
		collector.RegisterCounts("segheap."+sizeLabel(size), func() uint32 { return heap.NumFreeInClass(i) })
	}

	p := heap.Allocate(40) // cascades up to the 64-byte class
	log.Info("allocated 40 bytes from the 64-byte class", obslog.Uint32("free", heap.NumFreeInClass(1)))
	heap.Free(p)
	log.Info("freed", obslog.Uint32("free", heap.NumFreeInClass(1)))
}

func sizeLabel(size uint32) string {
	switch size {
	case 16:
		return "16b"
	case 64:
		return "64b"
	case 256:
		return "256b"
	default:
		return "other"
	}
}

func runSlab(log *obslog.Logger, collector *allocmetrics.Collector) {
	log = log.With(obslog.String("allocator", "slab"))

	buf := make([]byte, 16384)
	slab, err := arena.NewPagedSlab(buf, 1024, 32)
	if err != nil {
		log.Error("construction failed", obslog.Err(err))
		return
	}
	collector.RegisterCounts("slab.free_pages", func() uint32 { return uint32(slab.NumFreePages()) })
	collector.RegisterCounts("slab.full_pages", func() uint32 { return uint32(slab.NumFullPages()) })

	var allocs [][]byte
	for i := 0; i < 40; i++ {
		p := slab.Allocate()
		if p == nil {
			break
		}
		allocs = append(allocs, p)
	}
	log.Info("allocated", obslog.Int("count", len(allocs)), obslog.Int("full_pages", slab.NumFullPages()))

	for _, p := range allocs {
		slab.Free(p)
	}
	log.Info("freed all", obslog.Int("free_pages", slab.NumFreePages()), obslog.Int("full_pages", slab.NumFullPages()))
}
