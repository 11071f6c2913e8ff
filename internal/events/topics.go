package events

const (
	TopicCartUpdated  = "storefront.cart.updated"
	TopicUserActivity = "storefront.user.activity"
)

// Partition key = username, so one user's events keep their order.
func PartitionKey(username string) []byte { return []byte(username) }
