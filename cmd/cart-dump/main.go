// Command cart-dump prints the persisted cart for a given cart ID along
// with its recomputed totals. Useful when debugging reports of carts that
// "lost" items across reloads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ovenlight/pizzeria-cart/internal/domain/cart"
	"github.com/ovenlight/pizzeria-cart/internal/storage"
)

func main() {
	var (
		redisURL string
		fileDir  string
		cartID   string
	)

	flag.StringVar(&redisURL, "redis-url", "", "Redis connection URL (or REDIS_URL env)")
	flag.StringVar(&fileDir, "file-dir", "", "directory of the file storage backend (instead of Redis)")
	flag.StringVar(&cartID, "cart-id", "", "cart identifier to dump")
	flag.Parse()

	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if cartID == "" {
		slog.Error("cart ID is required: set --cart-id")
		os.Exit(1)
	}
	if redisURL == "" && fileDir == "" {
		slog.Error("storage is required: set --redis-url, REDIS_URL, or --file-dir")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, redisURL, fileDir, cartID); err != nil {
		slog.Error("dump failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, redisURL, fileDir, cartID string) error {
	var slot storage.Slot
	if fileDir != "" {
		fileSlot, err := storage.NewFile(fileDir)
		if err != nil {
			return err
		}
		slot = fileSlot
	} else {
		redisSlot, err := storage.NewRedis(ctx, redisURL)
		if err != nil {
			return err
		}
		defer redisSlot.Close()
		slot = redisSlot
	}

	store, err := cart.Open(ctx, slot, cart.Key(cartID))
	if err != nil {
		return err
	}

	items := store.Snapshot()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}

	for i, item := range items {
		fmt.Printf("%3d  %-40s  %8s x %d\n", i, item.Name, item.UnitPrice.StringFixed(2), item.Quantity)
	}

	t := store.Totals()
	fmt.Printf("\nsubtotal %s  tax %s  total %s  (%d items)\n",
		t.Subtotal.StringFixed(2), t.Tax.StringFixed(2), t.Total.StringFixed(2), t.ItemCount)
	return nil
}
