package models

import (
	"fmt"
	"strings"
)

// OrderStatus is a step in the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseOrderStatus matches s case-insensitively against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for status := range validNext {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(validNext[s]) == 0
}

func (s OrderStatus) String() string {
	return string(s)
}
