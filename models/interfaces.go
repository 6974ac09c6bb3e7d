package models

import "context"

type OrderSource interface {
	GetOrders(ctx context.Context) ([]Order, error)
}
