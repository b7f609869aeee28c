package orders

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status.changed"
	TopicStockRejected      = "order.stock.rejected"
	TopicBackInStock        = "stock.back_in_stock"
)

// Partition key = order_id (atau product_id), supaya event 1 entity tetap urut.
func PartitionKey(id string) []byte { return []byte(id) }
