package models

import "time"

// DefaultProductImageURL is used for products created without an image.
const DefaultProductImageURL = "https://placehold.co/300x300"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImgURL       string    `json:"imgUrl"`
	SKU          string    `json:"sku"`
	Stock        int       `json:"stock"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductInput carries the writable product fields for create and update.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImgURL      string  `json:"imgUrl"`
	SKU         string  `json:"sku"`
	Stock       int     `json:"stock"`
	CategoryID  int64   `json:"categoryId"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}
