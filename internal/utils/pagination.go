package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaginationParams struct {
	Page  int
	Limit int
}

type PaginationMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// GetPaginationParams reads page and limit, clamping limit to 1..100.
func GetPaginationParams(c *gin.Context, defaultLimit int) *PaginationParams {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = defaultLimit
	}

	return NewPaginationParams(page, limit)
}

func NewPaginationParams(page, limit int) *PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < MinPageSize {
		limit = MinPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return &PaginationParams{Page: page, Limit: limit}
}

func (p *PaginationParams) GetSkip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

func (p *PaginationParams) GetLimit() int64 {
	return int64(p.Limit)
}

// FindOptions returns skip/limit options with the given sort applied.
func (p *PaginationParams) FindOptions(sort bson.D) *options.FindOptions {
	opts := options.Find().SetSkip(p.GetSkip()).SetLimit(p.GetLimit())
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}

func CreatePaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginationMeta{
		CurrentPage:  params.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: params.Limit,
		HasNextPage:  params.Page < totalPages,
		HasPrevPage:  params.Page > 1,
	}
}
