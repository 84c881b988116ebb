package clix

import (
	"github.com/spf13/pflag"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads the --limit and --offset flags. A missing or
// non-positive limit becomes 20.
func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// AddPaginationFlags registers --limit and --offset on flags.
func AddPaginationFlags(flags *pflag.FlagSet, defaultLimit int) {
	flags.IntP("limit", "l", defaultLimit, "Number of items to display")
	flags.IntP("offset", "o", 0, "Number of items to skip")
}
