package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-sales/internal/adapter/storage"
	"github.com/rl1809/inventory-sales/internal/core/domain"
	"github.com/rl1809/inventory-sales/internal/core/service"
	"github.com/rl1809/inventory-sales/internal/port"
)

func main() {
	var (
		driver    = flag.String("driver", "mysql", "database driver: mysql or postgres")
		dsn       = flag.String("dsn", "root:root@tcp(localhost:3306)/inventory?parseTime=true", "database DSN")
		redisAddr = flag.String("redis", "localhost:6379", "redis address, empty to skip the stock cache")
		productID = flag.Int64("product", 1, "product to update")
		requests  = flag.Int("requests", 50, "number of concurrent updates")
	)
	flag.Parse()

	ctx := context.Background()

	dialect, err := storage.ParseDialect(*driver)
	if err != nil {
		log.Fatal(err)
	}
	db, err := storage.Open(ctx, dialect, *dsn, storage.PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()
	store := storage.NewSQLAdapter(db, dialect)

	var cache *storage.RedisAdapter
	var stockCache port.StockCache
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb)
		stockCache = cache
	}

	svc := service.NewInventoryService(store, stockCache, port.SystemClock{}, nil)

	before, err := currentStatus(ctx, svc, *productID)
	if err != nil {
		log.Fatal(err)
	}

	// Counters
	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var failCount atomic.Int32

	// Every goroutine writes a distinct quantity.
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func(quantity int) {
			defer wg.Done()

			_, err := svc.UpdateQuantity(ctx, *productID, quantity)
			switch {
			case err == nil:
				successCount.Add(1)
			case isConflict(err):
				conflictCount.Add(1)
			default:
				failCount.Add(1)
				log.Printf("update to %d failed: %v", quantity, err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	after, err := currentStatus(ctx, svc, *productID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Product:          %d\n", *productID)
	fmt.Printf("Total Requests:   %d\n", *requests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Lock Conflicts:   %d\n", conflictCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if after.CurrentQuantity >= 0 && after.CurrentQuantity < *requests {
		fmt.Printf("PASS: final quantity %d is one of the written values\n", after.CurrentQuantity)
	} else {
		fmt.Printf("FAIL: final quantity %d was never written\n", after.CurrentQuantity)
	}

	if !after.LastUpdated.Before(before.LastUpdated) {
		fmt.Println("PASS: last_updated did not move backwards")
	} else {
		fmt.Printf("FAIL: last_updated went from %v to %v\n", before.LastUpdated, after.LastUpdated)
	}

	if after.LowStockAlert == (after.CurrentQuantity <= after.LowStockThreshold) {
		fmt.Println("PASS: low stock alert matches quantity")
	} else {
		fmt.Println("FAIL: low stock alert is inconsistent")
	}

	if cache == nil {
		return
	}

	cached, ok, err := cache.Stock(ctx, *productID)
	if err != nil {
		log.Fatalf("read cached stock: %v", err)
	}
	low, err := cache.LowStockProducts(ctx)
	if err != nil {
		log.Fatalf("read low stock set: %v", err)
	}
	inLowSet := slices.Contains(low, *productID)
	fmt.Printf("Cached Stock:      %d (present=%v)\n", cached, ok)
	fmt.Printf("In Low Stock Set:  %v\n", inLowSet)

	if ok && cached == after.CurrentQuantity && inLowSet == after.LowStockAlert {
		fmt.Println("PASS: stock cache matches the store")
	} else {
		fmt.Printf("FAIL: stock cache diverged from store: db=%d cache=%d\n", after.CurrentQuantity, cached)
	}
}

func currentStatus(ctx context.Context, svc *service.InventoryService, productID int64) (domain.InventoryStatus, error) {
	statuses, err := svc.GetStatus(ctx, domain.StockFilter{})
	if err != nil {
		return domain.InventoryStatus{}, err
	}
	for _, s := range statuses {
		if s.ProductID == productID {
			return s, nil
		}
	}
	return domain.InventoryStatus{}, fmt.Errorf("product %d has no inventory row", productID)
}

func isConflict(err error) bool {
	return errors.Is(err, storage.ErrLockConflict)
}
