package common

import "context"

// Component is one stage of a collection run.
type Component interface {
	Name() string
	Run(context.Context) error
}
