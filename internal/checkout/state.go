package checkout

// State is a step of the checkout flow. Only PAID and FAILED are terminal.
type State string

const (
	StateCartPending      State = "CART_PENDING"
	StateOrderCreated     State = "ORDER_CREATED"
	StateCaptureRequested State = "CAPTURE_REQUESTED"
	StatePaid             State = "PAID"
	StateFailed           State = "FAILED"
)

const (
	operationCreate  = "create_order"
	operationCapture = "capture_order"
)

func (s State) String() string { return string(s) }

func (s State) Terminal() bool {
	return s == StatePaid || s == StateFailed
}
