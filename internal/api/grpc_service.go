package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	bookingServiceName = "shareit.booking.v1.BookingService"
	methodGetBooking   = "/" + bookingServiceName + "/GetBooking"
	methodListBookings = "/" + bookingServiceName + "/ListBookings"
	methodGetItem      = "/" + bookingServiceName + "/GetItem"
)

// BookingReadServer is the read-only booking API for other services.
// Requests and responses are JSON-shaped structs so clients need no generated stubs.
type BookingReadServer interface {
	GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var bookingServiceDesc = grpc.ServiceDesc{
	ServiceName: bookingServiceName,
	HandlerType: (*BookingReadServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetBooking",
			Handler: unaryHandler(methodGetBooking, func(s BookingReadServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetBooking(ctx, in)
			}),
		},
		{
			MethodName: "ListBookings",
			Handler: unaryHandler(methodListBookings, func(s BookingReadServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ListBookings(ctx, in)
			}),
		},
		{
			MethodName: "GetItem",
			Handler: unaryHandler(methodGetItem, func(s BookingReadServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetItem(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: bookingProtoFile,
}

func RegisterBookingReadServer(s grpc.ServiceRegistrar, srv BookingReadServer) {
	s.RegisterService(&bookingServiceDesc, srv)
}

func unaryHandler(
	fullMethod string,
	call func(BookingReadServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingReadServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingReadServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BookingReadService serves BookingReadServer from the business services.
type BookingReadService struct {
	bookings *service.BookingService
	items    *service.ItemService
	pageSize int
}

func NewBookingReadService(bookings *service.BookingService, items *service.ItemService, pageSize int) *BookingReadService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &BookingReadService{bookings: bookings, items: items, pageSize: pageSize}
}

func (s *BookingReadService) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := intField(req, "user_id", nil)
	if err != nil {
		return nil, grpcError(err)
	}
	bookingID, err := intField(req, "booking_id", nil)
	if err != nil {
		return nil, grpcError(err)
	}

	view, err := s.bookings.Get(ctx, userID, bookingID)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(view)
}

func (s *BookingReadService) ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := intField(req, "user_id", nil)
	if err != nil {
		return nil, grpcError(err)
	}
	zero := int64(0)
	from, err := intField(req, "from", &zero)
	if err != nil {
		return nil, grpcError(err)
	}
	defSize := int64(s.pageSize)
	size, err := intField(req, "size", &defSize)
	if err != nil {
		return nil, grpcError(err)
	}

	role := models.RoleBooker
	switch strings.ToUpper(stringField(req, "role")) {
	case "", string(models.RoleBooker):
	case string(models.RoleOwner):
		role = models.RoleOwner
	default:
		return nil, grpcError(domain.Validation("Unknown role: %s", stringField(req, "role")))
	}

	state, err := service.ParseState(stringField(req, "state"))
	if err != nil {
		return nil, grpcError(err)
	}

	views, err := s.bookings.List(ctx, userID, role, state, int(from), int(size))
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(map[string]any{"bookings": views})
}

func (s *BookingReadService) GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := intField(req, "user_id", nil)
	if err != nil {
		return nil, grpcError(err)
	}
	itemID, err := intField(req, "item_id", nil)
	if err != nil {
		return nil, grpcError(err)
	}

	view, err := s.items.Get(ctx, userID, itemID)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(view)
}

// intField reads an integral number field. A nil def makes the field required.
func intField(req *structpb.Struct, name string, def *int64) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		if def != nil {
			return *def, nil
		}
		return 0, domain.Validation("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, domain.Validation("%s must be an integer", name)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if n.NumberValue >= math.MaxInt64 || n.NumberValue < math.MinInt64 {
		return 0, domain.Validation("%s is out of range", name)
	}
	return int64(n.NumberValue), nil
}

func stringField(req *structpb.Struct, name string) string {
	return strings.TrimSpace(req.GetFields()[name].GetStringValue())
}

// toStruct converts a JSON-serialisable view into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, grpcError(fmt.Errorf("marshal response: %w", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, grpcError(fmt.Errorf("unmarshal response: %w", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, grpcError(fmt.Errorf("build response: %w", err))
	}
	return out, nil
}
