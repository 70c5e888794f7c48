package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"goflare.io/storefront/driver"
	"goflare.io/storefront/models"
)

var _ Repository = (*repository)(nil)

// Repository is the cart-retrieval collaborator: it supplies the current cart
// snapshot for a customer. Local deletions never flow back here; the store owns
// the session's view of the cart between loads.
type Repository interface {
	GetCart(ctx context.Context, customerID string) (*models.CartSnapshot, error)
}

const snapshotCacheTTL = 30 * time.Minute

type repository struct {
	conn   driver.PostgresPool
	cache  *redis.Client
	sfg    singleflight.Group
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, cache *redis.Client, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		cache:  cache,
		logger: logger,
	}
}

const getCartQuery = `
SELECT ci.id, ci.quantity, ci.total_price, p.title, p.price, COALESCE(p.image_url, '')
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.customer_id = $1
ORDER BY ci.id`

func (r *repository) GetCart(ctx context.Context, customerID string) (*models.CartSnapshot, error) {
	// Collapse concurrent misses for the same customer onto one database read.
	v, err, _ := r.sfg.Do(customerID, func() (any, error) {
		cacheKey := fmt.Sprintf("cart:snapshot:%s", customerID)

		var snapshot models.CartSnapshot
		data, err := r.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			if err = json.Unmarshal(data, &snapshot); err == nil {
				return &snapshot, nil
			}
			r.logger.Warn("Failed to decode cached cart snapshot", zap.Error(err))
		} else if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Failed to get cart snapshot from cache", zap.Error(err))
		}

		loaded, err := r.queryCart(ctx, customerID)
		if err != nil {
			r.logger.Error("Failed to load cart", zap.String("customer_id", customerID), zap.Error(err))
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}

		if data, err := json.Marshal(loaded); err == nil {
			if err = r.cache.Set(ctx, cacheKey, data, snapshotCacheTTL).Err(); err != nil {
				r.logger.Warn("Failed to cache cart snapshot", zap.Error(err))
			}
		}

		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.CartSnapshot), nil
}

func (r *repository) queryCart(ctx context.Context, customerID string) (*models.CartSnapshot, error) {
	rows, err := r.conn.Query(ctx, getCartQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := models.NewCartSnapshot()
	for rows.Next() {
		var item models.CartItem
		if err = rows.Scan(
			&item.CartID,
			&item.Quantity,
			&item.TotalPrice,
			&item.Product.Title,
			&item.Product.Price,
			&item.Product.ImageURL,
		); err != nil {
			return nil, err
		}
		snapshot.Items = append(snapshot.Items, item)
		snapshot.TotalPrice += item.TotalPrice
		snapshot.TotalLength += item.Quantity
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}
