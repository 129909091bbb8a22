package handler

import (
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/rpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type fieldDecoder func(req *structpb.Struct) error

func decode(req *structpb.Struct, fields ...fieldDecoder) error {
	for _, f := range fields {
		if err := f(req); err != nil {
			return err
		}
	}
	return nil
}

func stringField(name string, dst *string) fieldDecoder {
	return func(req *structpb.Struct) (err error) {
		*dst, err = rpc.String(req, name)
		return err
	}
}

func optionalStringField(name string, dst *string) fieldDecoder {
	return func(req *structpb.Struct) error {
		s, err := rpc.OptionalString(req, name)
		if s != nil {
			*dst = *s
		}
		return err
	}
}

func intField(name string, dst *int64) fieldDecoder {
	return func(req *structpb.Struct) (err error) {
		*dst, err = rpc.Int(req, name)
		return err
	}
}

func priceField(dst *float64) fieldDecoder {
	return func(req *structpb.Struct) error {
		p, err := rpc.Number(req, "price")
		if err != nil {
			return err
		}
		if p <= 0 {
			return &rpc.InvalidArgumentError{Field: "price", Reason: "must be positive"}
		}
		*dst = p
		return nil
	}
}

func parsePatch(req *structpb.Struct) (*dto.PatchItemInput, error) {
	id, err := rpc.Int(req, "id")
	if err != nil {
		return nil, err
	}
	input := &dto.PatchItemInput{ID: id}

	if input.Name, err = rpc.OptionalString(req, "name"); err != nil {
		return nil, err
	}
	if input.Price, err = rpc.OptionalNumber(req, "price"); err != nil {
		return nil, err
	}
	if input.Price != nil && *input.Price <= 0 {
		return nil, &rpc.InvalidArgumentError{Field: "price", Reason: "must be positive"}
	}
	if input.Category, err = rpc.OptionalString(req, "category"); err != nil {
		return nil, err
	}
	if input.ImageURL, err = rpc.OptionalString(req, "imageUrl"); err != nil {
		return nil, err
	}
	return input, nil
}

func parseFilters(req *structpb.Struct) (*dto.ItemFilters, error) {
	f := &dto.ItemFilters{}

	for name, dst := range map[string]*string{
		"name":      &f.Name,
		"category":  &f.Category,
		"sortBy":    &f.SortBy,
		"direction": &f.Direction,
	} {
		s, err := rpc.OptionalString(req, name)
		if err != nil {
			return nil, err
		}
		if s != nil {
			*dst = *s
		}
	}

	maxPrice, err := rpc.OptionalNumber(req, "maxPrice")
	if err != nil {
		return nil, err
	}
	f.MaxPrice = maxPrice

	page, err := rpc.OptionalInt(req, "page", dto.DefaultPage)
	if err != nil {
		return nil, err
	}
	size, err := rpc.OptionalInt(req, "size", dto.DefaultSize)
	if err != nil {
		return nil, err
	}
	f.Page, f.Size = int(page), int(size)

	return f.Normalize(), nil
}
