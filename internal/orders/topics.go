package orders

import "strconv"

const TopicBillingOrders = "billing.orders"

// Partition key = order_id, supaya semua event 1 order tetap berurutan.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }

// ClearKey partitions bulk-clear events apart from any single order.
var ClearKey = []byte("orders-cleared")
