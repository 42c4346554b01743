package report

type Report struct {
	Ledger         *LedgerReport         `json:"ledger,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
