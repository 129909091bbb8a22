package handler

import (
	"github.com/fekuna/omnipos-catalog-service/internal/live"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName  = "catalog.v1.LiveService"
	DefaultGroup = "catalog"
)

type LiveServiceServer interface {
	Subscribe(group *wrapperspb.StringValue, stream grpc.ServerStream) error
}

var _ LiveServiceServer = (*LiveHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LiveServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(wrapperspb.StringValue)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(LiveServiceServer).Subscribe(in, stream)
			},
		},
	},
	Metadata: "catalog/v1/live.proto",
}

func RegisterLiveServiceServer(s grpc.ServiceRegistrar, srv LiveServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type LiveHandler struct {
	hub    *live.Hub
	logger logger.ZapLogger
}

func NewLiveHandler(hub *live.Hub, log logger.ZapLogger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: log}
}

// Subscribe streams {method, payload} structs for the requested group until
// the caller disconnects or the hub shuts down.
func (h *LiveHandler) Subscribe(req *wrapperspb.StringValue, stream grpc.ServerStream) error {
	group := req.GetValue()
	if group == "" {
		group = DefaultGroup
	}

	client := h.hub.Join(group)
	defer h.hub.Leave(group, client)
	h.logger.Info("live client joined", zap.String("group", group), zap.String("client_id", client.ID))

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-client.Messages():
			if !ok {
				return nil
			}
			out, err := structpb.NewStruct(map[string]any{
				"method":  msg.Method,
				"payload": msg.Payload,
			})
			if err != nil {
				h.logger.Error("failed to encode live message", zap.Error(err), zap.String("method", msg.Method))
				continue
			}
			if err := stream.SendMsg(out); err != nil {
				return err
			}
		}
	}
}
