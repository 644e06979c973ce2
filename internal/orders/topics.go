package orders

const TopicOrderStatusChanged = "order.status.changed"

// Partition key = order_id, so all events for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
