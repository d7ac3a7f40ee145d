package order

type IDGenerator interface {
	NewID() string
}

// GroupIDGenerator issues the shared order group and shipping identifiers of one checkout.
type GroupIDGenerator interface {
	IDGenerator
	NewGroupIDs() (groupID, shippingID string)
}
