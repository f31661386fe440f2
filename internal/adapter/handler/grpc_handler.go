package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/adapter/handler/pb"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type GRPCHandler struct {
	pb.UnimplementedStorefrontServer
	carts    *service.CartRegistry
	checkout *service.CheckoutService
	logger   *zap.Logger
}

func NewGRPCHandler(carts *service.CartRegistry, checkout *service.CheckoutService, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{carts: carts, checkout: checkout, logger: logger.Named("grpc")}
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *pb.CartRequest) (*pb.CartReply, error) {
	cart, err := h.cart(ctx, req.GetSessionId())
	if err != nil {
		return nil, err
	}
	return toCartReply(cart.Items()), nil
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *pb.AddItemRequest) (*pb.CartReply, error) {
	item := req.GetItem()
	if item == nil || item.ProductId == "" {
		return nil, status.Error(codes.InvalidArgument, "item with productId is required")
	}
	if item.Quantity < 1 {
		return nil, status.Error(codes.InvalidArgument, "quantity must be at least 1")
	}

	cart, err := h.cart(ctx, req.GetSessionId())
	if err != nil {
		return nil, err
	}
	cart.Add(ctx, fromPBLine(item))
	return toCartReply(cart.Items()), nil
}

func (h *GRPCHandler) UpdateQuantity(ctx context.Context, req *pb.UpdateQuantityRequest) (*pb.UpdateQuantityReply, error) {
	cart, err := h.cart(ctx, req.GetSessionId())
	if err != nil {
		return nil, err
	}
	applied := cart.UpdateQuantity(ctx, req.ProductId, int(req.Quantity))
	return &pb.UpdateQuantityReply{Applied: applied, Cart: toCartReply(cart.Items())}, nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *pb.RemoveItemRequest) (*pb.CartReply, error) {
	cart, err := h.cart(ctx, req.GetSessionId())
	if err != nil {
		return nil, err
	}
	cart.Remove(ctx, req.ProductId)
	return toCartReply(cart.Items()), nil
}

func (h *GRPCHandler) ClearCart(ctx context.Context, req *pb.CartRequest) (*pb.CartReply, error) {
	cart, err := h.cart(ctx, req.GetSessionId())
	if err != nil {
		return nil, err
	}
	cart.Clear(ctx)
	return toCartReply(cart.Items()), nil
}

// Checkout stores the customer details on the session's flow and submits
// the order in one call.
func (h *GRPCHandler) Checkout(ctx context.Context, req *pb.CheckoutRequest) (*pb.CheckoutReply, error) {
	sessionID := req.GetSessionId()
	if sessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "sessionId is required")
	}

	if c := req.GetCustomer(); c != nil {
		customer := domain.Customer{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
		if err := h.checkout.UpdateCustomer(ctx, sessionID, customer); err != nil {
			return nil, h.checkoutStatus(sessionID, err)
		}
	}

	confirmation, err := h.checkout.Submit(ctx, sessionID, req.ClientId)
	if err != nil {
		return nil, h.checkoutStatus(sessionID, err)
	}

	return &pb.CheckoutReply{
		Success:      true,
		Message:      "order placed successfully",
		OrderNumber:  confirmation.OrderNumber,
		Confirmation: confirmation.Message,
		DeepLink:     confirmation.DeepLink,
		RedirectPath: confirmation.RedirectPath,
	}, nil
}

func (h *GRPCHandler) checkoutStatus(sessionID string, err error) error {
	var validationErr *service.ValidationError
	var orderErr *service.OrderError

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return status.Error(codes.FailedPrecondition, "Please add items to your cart before checking out")
	case errors.Is(err, service.ErrSubmissionInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, service.ErrCheckoutClosed), errors.Is(err, service.ErrCustomerLocked):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Message)
	case errors.As(err, &orderErr):
		h.logger.Error("grpc checkout failed", zap.String("session_id", sessionID), zap.Error(err))
		return status.Error(codes.Unavailable, orderErr.Message)
	default:
		h.logger.Error("grpc checkout failed", zap.String("session_id", sessionID), zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func (h *GRPCHandler) cart(ctx context.Context, sessionID string) (*service.Cart, error) {
	if sessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "sessionId is required")
	}
	return h.carts.Cart(ctx, sessionID), nil
}

func fromPBLine(l *pb.CartLine) domain.CartLine {
	return domain.CartLine{
		ProductID:     l.ProductId,
		Name:          l.Name,
		Description:   l.Description,
		Image:         l.Image,
		UnitOfMeasure: l.UnitOfMeasure,
		CurrencyCode:  l.CurrencyCode,
		UnitPrice:     l.UnitPrice,
		Quantity:      int(l.Quantity),
		MaxQuantity:   int(l.MaxQuantity),
	}
}

func toCartReply(lines []domain.CartLine) *pb.CartReply {
	items := make([]*pb.CartLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, &pb.CartLine{
			ProductId:     l.ProductID,
			Name:          l.Name,
			Description:   l.Description,
			Image:         l.Image,
			UnitOfMeasure: l.UnitOfMeasure,
			CurrencyCode:  l.CurrencyCode,
			UnitPrice:     l.UnitPrice,
			Quantity:      int32(l.Quantity),
			MaxQuantity:   int32(l.MaxQuantity),
		})
	}
	return &pb.CartReply{
		Items: items,
		Count: int32(domain.SumQuantity(lines)),
		Total: domain.SumTotal(lines).StringFixed(2),
	}
}
