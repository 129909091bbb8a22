package handler

import (
	"context"
	"net"
	"testing"
	"time"

	catH "github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	catrepo "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	catuc "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/event"
	itemrepo "github.com/fekuna/omnipos-catalog-service/internal/item/repository"
	itemuc "github.com/fekuna/omnipos-catalog-service/internal/item/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/rpc"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type noCache[T any] struct{}

func (noCache[T]) Get(context.Context, string) (*T, bool)         { return nil, false }
func (noCache[T]) Set(context.Context, string, *T, time.Duration) {}
func (noCache[T]) Remove(context.Context, string)                 {}

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	log := logger.NewNop()

	cats := catrepo.NewMemoryRepository()
	items := itemrepo.NewMemoryRepository(cats)
	catUC := catuc.NewCategoryUseCase(cats, items, noCache[model.Category]{}, log)
	fanout := event.NewFanout(log, time.Second)
	itemUC := itemuc.NewItemUseCase(items, catUC, noCache[model.Item]{}, fanout, log)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLoggingInterceptor(log)))
	RegisterItemServiceServer(srv, NewItemHandler(itemUC, log))
	catH.RegisterCategoryServiceServer(srv, catH.NewCategoryHandler(catUC, log))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, service, method string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return rpc.Invoke(ctx, conn, service, method, in)
}

func TestItemServiceOverGRPC(t *testing.T) {
	conn := dial(t)

	if _, err := call(t, conn, catH.ServiceName, "CreateCategory", map[string]any{"name": "POKEMON"}); err != nil {
		t.Fatalf("create category: %v", err)
	}

	_, err := call(t, conn, ServiceName, "CreateItem", map[string]any{"name": "Agumon", "price": 3, "category": "DIGIMON"})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists for unknown category, got %v", err)
	}

	_, err = call(t, conn, ServiceName, "CreateItem", map[string]any{"name": "Pikachu", "price": -1, "category": "POKEMON"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for negative price, got %v", err)
	}

	created, err := call(t, conn, ServiceName, "CreateItem", map[string]any{"name": "Pikachu", "price": 9.99, "category": "POKEMON"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	id := created.GetFields()["id"].GetNumberValue()

	patched, err := call(t, conn, ServiceName, "PatchItem", map[string]any{"id": id, "price": 14.5})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	fields := patched.GetFields()
	if fields["name"].GetStringValue() != "Pikachu" || fields["price"].GetNumberValue() != 14.5 {
		t.Fatalf("unexpected patch result %v", patched)
	}
	if fields["category"].GetStructValue().GetFields()["name"].GetStringValue() != "POKEMON" {
		t.Fatalf("category not joined: %v", fields["category"])
	}

	page, err := call(t, conn, ServiceName, "ListItems", map[string]any{"maxPrice": 20, "sortBy": "price"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.GetFields()["totalCount"].GetNumberValue() != 1 || page.GetFields()["size"].GetNumberValue() != 10 {
		t.Fatalf("unexpected page %v", page)
	}

	if _, err := call(t, conn, ServiceName, "DeleteItem", map[string]any{"id": id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := call(t, conn, ServiceName, "GetItem", map[string]any{"id": id}); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if _, err := call(t, conn, ServiceName, "GetItem", map[string]any{}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument without id, got %v", err)
	}
}
