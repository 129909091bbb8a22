package handler

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/rpc"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "catalog.v1.CategoryService"

type CategoryServiceServer interface {
	CreateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var _ CategoryServiceServer = (*CategoryHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CategoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.UnaryMethod(ServiceName, "CreateCategory", CategoryServiceServer.CreateCategory),
		rpc.UnaryMethod(ServiceName, "GetCategory", CategoryServiceServer.GetCategory),
		rpc.UnaryMethod(ServiceName, "ListCategories", CategoryServiceServer.ListCategories),
		rpc.UnaryMethod(ServiceName, "UpdateCategory", CategoryServiceServer.UpdateCategory),
		rpc.UnaryMethod(ServiceName, "DeleteCategory", CategoryServiceServer.DeleteCategory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/category.proto",
}

func RegisterCategoryServiceServer(s grpc.ServiceRegistrar, srv CategoryServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) CreateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := requiredName(req)
	if err != nil {
		return nil, rpc.Error(h.logger, "create category", err)
	}

	cat, err := h.uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: name})
	if err != nil {
		return nil, rpc.Error(h.logger, "create category", err)
	}
	return structpb.NewStruct(mapModelToMap(cat))
}

// GetCategory looks a category up by id, or by name when only name is given.
func (h *CategoryHandler) GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.OptionalString(req, "id")
	if err != nil {
		return nil, rpc.Error(h.logger, "get category", err)
	}

	var cat *model.Category
	if id != nil {
		cat, err = h.uc.GetCategory(ctx, *id)
	} else {
		var name string
		if name, err = requiredName(req); err == nil {
			cat, err = h.uc.GetCategoryByName(ctx, name)
		}
	}
	if err != nil {
		return nil, rpc.Error(h.logger, "get category", err)
	}
	return structpb.NewStruct(mapModelToMap(cat))
}

func (h *CategoryHandler) ListCategories(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	cats, err := h.uc.ListCategories(ctx)
	if err != nil {
		return nil, rpc.Error(h.logger, "list categories", err)
	}

	out := make([]any, len(cats))
	for i := range cats {
		out[i] = mapModelToMap(&cats[i])
	}
	return structpb.NewStruct(map[string]any{
		"categories": out,
		"total":      len(cats),
	})
}

func (h *CategoryHandler) UpdateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.String(req, "id")
	if err != nil {
		return nil, rpc.Error(h.logger, "update category", err)
	}
	name, err := requiredName(req)
	if err != nil {
		return nil, rpc.Error(h.logger, "update category", err)
	}

	cat, err := h.uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: id, Name: name})
	if err != nil {
		return nil, rpc.Error(h.logger, "update category", err)
	}
	return structpb.NewStruct(mapModelToMap(cat))
}

func (h *CategoryHandler) DeleteCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.String(req, "id")
	if err != nil {
		return nil, rpc.Error(h.logger, "delete category", err)
	}

	cat, err := h.uc.DeleteCategory(ctx, id)
	if err != nil {
		return nil, rpc.Error(h.logger, "delete category", err)
	}
	return structpb.NewStruct(mapModelToMap(cat))
}

func requiredName(req *structpb.Struct) (string, error) {
	name, err := rpc.String(req, "name")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", &rpc.InvalidArgumentError{Field: "name", Reason: "must not be blank"}
	}
	return name, nil
}

// Helper to map model to a struct payload
func mapModelToMap(m *model.Category) map[string]any {
	return map[string]any{
		"id":        m.ID,
		"name":      m.Name,
		"createdAt": m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
