package consts

type OutboxStatus int

const (
	NotProcessed OutboxStatus = iota
	Processing
	Processed
	InError
)

func (s OutboxStatus) String() string {
	switch s {
	case NotProcessed:
		return "not_processed"
	case Processing:
		return "processing"
	case Processed:
		return "processed"
	case InError:
		return "in_error"
	}
	return "unknown"
}
