package runtime

import (
	"runtime"

	"github.com/openprobity/crosswalk/pkg/actions"
)

// ExecutionConfig is the explicit execution state of one executor. It is
// passed in at construction and never mutated; there is no process-wide
// configuration.
type ExecutionConfig struct {
	// Workers bounds the goroutines used for row-partitioned application of
	// row-safe actions. 1 disables partitioning.
	Workers int `yaml:"workers"`

	// PartitionSize is the minimum rows per partition; tables smaller than
	// two partitions run sequentially.
	PartitionSize int `yaml:"partition_size"`

	// CategoryPolicy resolves a literal term bound to two different
	// category values from two different source columns.
	CategoryPolicy actions.CategoryPolicy `yaml:"category_policy"`
}

// DefaultConfig returns the sequential-by-default execution configuration.
func DefaultConfig() ExecutionConfig {
	return ExecutionConfig{
		Workers:        runtime.NumCPU(),
		PartitionSize:  10000,
		CategoryPolicy: actions.PolicyStrict,
	}
}

func (c *ExecutionConfig) normalize() {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.PartitionSize < 1 {
		c.PartitionSize = 10000
	}
	if c.CategoryPolicy == "" {
		c.CategoryPolicy = actions.PolicyStrict
	}
}
