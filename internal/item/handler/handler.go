package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/item"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/rpc"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "catalog.v1.ItemService"

type ItemServiceServer interface {
	GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	PatchItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var _ ItemServiceServer = (*ItemHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ItemServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.UnaryMethod(ServiceName, "GetItem", ItemServiceServer.GetItem),
		rpc.UnaryMethod(ServiceName, "ListItems", ItemServiceServer.ListItems),
		rpc.UnaryMethod(ServiceName, "CreateItem", ItemServiceServer.CreateItem),
		rpc.UnaryMethod(ServiceName, "UpdateItem", ItemServiceServer.UpdateItem),
		rpc.UnaryMethod(ServiceName, "PatchItem", ItemServiceServer.PatchItem),
		rpc.UnaryMethod(ServiceName, "DeleteItem", ItemServiceServer.DeleteItem),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/item.proto",
}

func RegisterItemServiceServer(s grpc.ServiceRegistrar, srv ItemServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type ItemHandler struct {
	uc     item.UseCase
	logger logger.ZapLogger
}

func NewItemHandler(uc item.UseCase, log logger.ZapLogger) *ItemHandler {
	return &ItemHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ItemHandler) GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.Int(req, "id")
	if err != nil {
		return nil, rpc.Error(h.logger, "get item", err)
	}

	it, err := h.uc.GetItem(ctx, id)
	if err != nil {
		return nil, rpc.Error(h.logger, "get item", err)
	}
	return toStruct(mapItemToMap(it))
}

func (h *ItemHandler) ListItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filters, err := parseFilters(req)
	if err != nil {
		return nil, rpc.Error(h.logger, "list items", err)
	}

	page, err := h.uc.ListItems(ctx, filters)
	if err != nil {
		return nil, rpc.Error(h.logger, "list items", err)
	}

	items := make([]any, len(page.Items))
	for i := range page.Items {
		items[i] = mapItemToMap(&page.Items[i])
	}
	return toStruct(map[string]any{
		"items":      items,
		"totalCount": page.TotalCount,
		"page":       page.Page,
		"size":       page.Size,
	})
}

func (h *ItemHandler) CreateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := &dto.CreateItemInput{}
	err := decode(req,
		stringField("name", &input.Name),
		priceField(&input.Price),
		stringField("category", &input.Category),
		optionalStringField("imageUrl", &input.ImageURL),
	)
	if err != nil {
		return nil, rpc.Error(h.logger, "create item", err)
	}

	it, err := h.uc.CreateItem(ctx, input)
	if err != nil {
		return nil, rpc.Error(h.logger, "create item", err)
	}
	return toStruct(mapItemToMap(it))
}

func (h *ItemHandler) UpdateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := &dto.UpdateItemInput{}
	err := decode(req,
		intField("id", &input.ID),
		stringField("name", &input.Name),
		priceField(&input.Price),
		stringField("category", &input.Category),
		optionalStringField("imageUrl", &input.ImageURL),
	)
	if err != nil {
		return nil, rpc.Error(h.logger, "update item", err)
	}

	it, err := h.uc.UpdateItem(ctx, input)
	if err != nil {
		return nil, rpc.Error(h.logger, "update item", err)
	}
	return toStruct(mapItemToMap(it))
}

func (h *ItemHandler) PatchItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := parsePatch(req)
	if err != nil {
		return nil, rpc.Error(h.logger, "patch item", err)
	}

	it, err := h.uc.PatchItem(ctx, input)
	if err != nil {
		return nil, rpc.Error(h.logger, "patch item", err)
	}
	return toStruct(mapItemToMap(it))
}

func (h *ItemHandler) DeleteItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.Int(req, "id")
	if err != nil {
		return nil, rpc.Error(h.logger, "delete item", err)
	}

	it, err := h.uc.DeleteItem(ctx, id)
	if err != nil {
		return nil, rpc.Error(h.logger, "delete item", err)
	}
	return toStruct(mapItemToMap(it))
}

func mapItemToMap(it *model.Item) map[string]any {
	var image any
	if it.ImageURL != nil {
		image = *it.ImageURL
	}

	var category any
	if it.Category != nil {
		category = map[string]any{
			"id":        it.Category.ID,
			"name":      it.Category.Name,
			"createdAt": it.Category.CreatedAt.UTC().Format(time.RFC3339Nano),
			"updatedAt": it.Category.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	return map[string]any{
		"id":        it.ID,
		"name":      it.Name,
		"price":     it.Price,
		"imageUrl":  image,
		"category":  category,
		"createdAt": it.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": it.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(m)
}
