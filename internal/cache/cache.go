// Package cache keeps recently read catalog items, seller profiles and order
// lists in memory. Writers invalidate entries after a successful order.
package cache

import (
	"fmt"
	"sync"

	"socialshop/internal/domain"

	lru "github.com/hashicorp/golang-lru"
)

type Cache struct {
	entries *lru.Cache

	// mu orders StoreOrders against InvalidateOrders; ordersGen holds the
	// sequence number of each buyer's latest invalidation.
	mu        sync.Mutex
	seq       uint64
	ordersGen map[string]uint64
}

// New builds a cache holding at most size entries across all kinds.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = 1024
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("init lru: %w", err)
	}
	return &Cache{entries: entries, ordersGen: make(map[string]uint64)}, nil
}

func itemKey(id string) string   { return "item:" + id }
func sellerKey(id string) string { return "seller:" + id }
func ordersKey(id string) string { return "orders:" + id }

func (c *Cache) Item(id string) (domain.ShopItem, bool) {
	v, ok := c.entries.Get(itemKey(id))
	if !ok {
		return domain.ShopItem{}, false
	}
	item, ok := v.(domain.ShopItem)
	return item, ok
}

func (c *Cache) StoreItem(item domain.ShopItem) {
	c.entries.Add(itemKey(item.ID), item)
}

func (c *Cache) InvalidateItem(id string) {
	c.entries.Remove(itemKey(id))
}

func (c *Cache) Seller(id string) (domain.Seller, bool) {
	v, ok := c.entries.Get(sellerKey(id))
	if !ok {
		return domain.Seller{}, false
	}
	seller, ok := v.(domain.Seller)
	return seller, ok
}

func (c *Cache) StoreSeller(seller domain.Seller) {
	c.entries.Add(sellerKey(seller.ID), seller)
}

func (c *Cache) InvalidateSeller(id string) {
	c.entries.Remove(sellerKey(id))
}

func (c *Cache) Orders(buyerID string) ([]domain.OrderHeader, bool) {
	v, ok := c.entries.Get(ordersKey(buyerID))
	if !ok {
		return nil, false
	}
	orders, ok := v.([]domain.OrderHeader)
	if !ok {
		return nil, false
	}
	out := make([]domain.OrderHeader, len(orders))
	copy(out, orders)
	return out, true
}

// OrdersGeneration is read before loading a buyer's orders and handed back
// to StoreOrders.
func (c *Cache) OrdersGeneration(buyerID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ordersGen[buyerID]
}

// StoreOrders caches the list unless InvalidateOrders ran for the buyer after
// gen was read. It reports whether the list was stored.
func (c *Cache) StoreOrders(buyerID string, gen uint64, orders []domain.OrderHeader) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ordersGen[buyerID] != gen {
		return false
	}
	stored := make([]domain.OrderHeader, len(orders))
	copy(stored, orders)
	c.entries.Add(ordersKey(buyerID), stored)
	return true
}

func (c *Cache) InvalidateOrders(buyerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.ordersGen[buyerID] = c.seq
	c.entries.Remove(ordersKey(buyerID))
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
