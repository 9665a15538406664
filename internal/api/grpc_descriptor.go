package api

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const bookingProtoFile = "shareit/booking/v1/booking.proto"

// The service has no generated stubs, so its descriptor is registered by hand
// for server reflection.
func init() {
	if err := registerBookingDescriptor(protoregistry.GlobalFiles); err != nil {
		panic(err)
	}
}

func registerBookingDescriptor(files *protoregistry.Files) error {
	if _, err := files.FindFileByPath(bookingProtoFile); err == nil {
		return nil
	}

	structFile := (&structpb.Struct{}).ProtoReflect().Descriptor().ParentFile().Path()
	structType := ".google.protobuf.Struct"

	method := func(name string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		}
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(bookingProtoFile),
		Package:    proto.String("shareit.booking.v1"),
		Dependency: []string{structFile},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("BookingService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("GetBooking"),
				method("ListBookings"),
				method("GetItem"),
			},
		}},
	}

	fd, err := protodesc.NewFile(fdp, files)
	if err != nil {
		return fmt.Errorf("build %s descriptor: %w", bookingProtoFile, err)
	}
	return files.RegisterFile(fd)
}
