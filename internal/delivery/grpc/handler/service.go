package handler

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "composer.v1.ComposerService"

type ComposerServer interface {
	StartDraft(context.Context, *StartDraftRequest) (*DraftResponse, error)
	GetDraft(context.Context, *DraftRequest) (*DraftResponse, error)
	AddProduct(context.Context, *ProductRequest) (*DraftResponse, error)
	RemoveProduct(context.Context, *ProductRequest) (*DraftResponse, error)
	SetQuantity(context.Context, *SetQuantityRequest) (*DraftResponse, error)
	SetVariety(context.Context, *SetVarietyRequest) (*DraftResponse, error)
	ChooseRequired(context.Context, *ChoiceRequest) (*DraftResponse, error)
	ClearRequired(context.Context, *ChoiceRequest) (*DraftResponse, error)
	SetOptional(context.Context, *ChoiceRequest) (*DraftResponse, error)
	ClearOptional(context.Context, *ChoiceRequest) (*DraftResponse, error)
	SetDelivery(context.Context, *SetDeliveryRequest) (*DraftResponse, error)
	Submit(context.Context, *DraftRequest) (*SubmitResponse, error)
	RetryFailedItems(context.Context, *DraftRequest) (*SubmitResponse, error)
	Reopen(context.Context, *DraftRequest) (*DraftResponse, error)
	Cancel(context.Context, *DraftRequest) (*CancelResponse, error)
	Quote(context.Context, *QuoteRequest) (*QuoteResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ComposerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartDraft", ComposerServer.StartDraft),
		unary("GetDraft", ComposerServer.GetDraft),
		unary("AddProduct", ComposerServer.AddProduct),
		unary("RemoveProduct", ComposerServer.RemoveProduct),
		unary("SetQuantity", ComposerServer.SetQuantity),
		unary("SetVariety", ComposerServer.SetVariety),
		unary("ChooseRequired", ComposerServer.ChooseRequired),
		unary("ClearRequired", ComposerServer.ClearRequired),
		unary("SetOptional", ComposerServer.SetOptional),
		unary("ClearOptional", ComposerServer.ClearOptional),
		unary("SetDelivery", ComposerServer.SetDelivery),
		unary("Submit", ComposerServer.Submit),
		unary("RetryFailedItems", ComposerServer.RetryFailedItems),
		unary("Reopen", ComposerServer.Reopen),
		unary("Cancel", ComposerServer.Cancel),
		unary("Quote", ComposerServer.Quote),
		unary("ListCategories", ComposerServer.ListCategories),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "composer/v1/composer.json",
}

// RegisterComposerServer registers srv on s. The server must be created with
// grpc.ForceServerCodec(Codec()).
func RegisterComposerServer(s grpc.ServiceRegistrar, srv ComposerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the wire name of a composer method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](method string, call func(ComposerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ComposerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(ComposerServer), ctx, req.(*Req))
			})
		},
	}
}
