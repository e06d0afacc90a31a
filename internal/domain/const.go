package domain

const (
	RequesterKeyCtxKey = "pk-requesterKey"
)

const (
	RequesterKeyHeader = "pk-requester-key"
)
