package pb

type CartLine struct {
	ProductId     string  `json:"productId"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Image         string  `json:"image,omitempty"`
	UnitOfMeasure string  `json:"unitOfMeasure,omitempty"`
	CurrencyCode  string  `json:"currencyCode,omitempty"`
	UnitPrice     float64 `json:"unitPrice"`
	Quantity      int32   `json:"quantity"`
	MaxQuantity   int32   `json:"maxQuantity,omitempty"`
}

type CartRequest struct {
	SessionId string `json:"sessionId"`
}

func (r *CartRequest) GetSessionId() string {
	if r == nil {
		return ""
	}
	return r.SessionId
}

type CartReply struct {
	Items []*CartLine `json:"items"`
	Count int32       `json:"count"`
	Total string      `json:"total"`
}

type AddItemRequest struct {
	SessionId string    `json:"sessionId"`
	Item      *CartLine `json:"item"`
}

func (r *AddItemRequest) GetSessionId() string {
	if r == nil {
		return ""
	}
	return r.SessionId
}

func (r *AddItemRequest) GetItem() *CartLine {
	if r == nil {
		return nil
	}
	return r.Item
}

type UpdateQuantityRequest struct {
	SessionId string `json:"sessionId"`
	ProductId string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

func (r *UpdateQuantityRequest) GetSessionId() string {
	if r == nil {
		return ""
	}
	return r.SessionId
}

type UpdateQuantityReply struct {
	Applied bool       `json:"applied"`
	Cart    *CartReply `json:"cart"`
}

type RemoveItemRequest struct {
	SessionId string `json:"sessionId"`
	ProductId string `json:"productId"`
}

func (r *RemoveItemRequest) GetSessionId() string {
	if r == nil {
		return ""
	}
	return r.SessionId
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CheckoutRequest struct {
	SessionId string    `json:"sessionId"`
	ClientId  string    `json:"clientId"`
	Customer  *Customer `json:"customer"`
}

func (r *CheckoutRequest) GetSessionId() string {
	if r == nil {
		return ""
	}
	return r.SessionId
}

func (r *CheckoutRequest) GetCustomer() *Customer {
	if r == nil {
		return nil
	}
	return r.Customer
}

type CheckoutReply struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	OrderNumber  string `json:"orderNumber,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
	DeepLink     string `json:"deepLink,omitempty"`
	RedirectPath string `json:"redirectPath,omitempty"`
}
