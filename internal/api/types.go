package api

import (
	"reflect"
	"strings"
)

func init() {
	// Report JSON field names in validation messages.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type reelRequest struct {
	URL    string `json:"url" validate:"required"`
	Vision bool   `json:"vision"`
}

type addMovieRequest struct {
	Query string `json:"query" validate:"required"`
}

type updateMovieRequest struct {
	IsWatched *bool `json:"is_watched"`
}

type recommendRequest struct {
	Query          string `json:"query" validate:"required"`
	IncludeWatched bool   `json:"include_watched"`
}

type listMoviesQuery struct {
	Source string `json:"source" validate:"omitempty,oneof=personal top100 awards instagram"`
}

type searchQuery struct {
	Query string `json:"q" validate:"required,min=1"`
}
