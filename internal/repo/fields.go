package repo

// Columns govlink filters, orders or patches on.
const (
	IDField                        QueryField = "id"
	StatusField                    QueryField = "status"
	VersionField                   QueryField = "version"
	StartTimeField                 QueryField = "start_time"
	ExecutionIDField               QueryField = "execution_id"
	SequenceField                  QueryField = "sequence"
	AwsAccountIDField              QueryField = "aws_account_id"
	CommercialLinkedAccountIDField QueryField = "commercial_linked_account_id"
	PeriodStartField               QueryField = "period_start"
)

// Sentinel values matched against nullable text columns such as the
// commercial linkage: Empty selects NULL or "", NotEmpty the opposite.
const (
	NotEmpty QueryFieldValue = "not_empty"
	Empty    QueryFieldValue = "empty"
)
