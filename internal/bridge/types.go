package bridge

// Creation status values reported by GetAccountStatus.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusSucceeded  = "SUCCEEDED"
	StatusFailed     = "FAILED"
)

// CostQuery selects the cost of one account in one region over [StartDate, EndDate).
// Dates use YYYY-MM-DD.
type CostQuery struct {
	LinkedAccountID     string `json:"linkedAccountId"`
	IsGovCloudAccountID bool   `json:"isGovCloudAccountId"`
	CommercialAccountID string `json:"commercialAccountId,omitempty"`
	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate"`
	Granularity         string `json:"granularity"`
	Region              string `json:"region"`
}

type CostResult struct {
	AccountID string        `json:"accountId"`
	Region    string        `json:"region"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	TotalCost float64       `json:"totalCost"`
	Currency  string        `json:"currency"`
	Services  []ServiceCost `json:"services,omitempty"`
}

type ServiceCost struct {
	Service string  `json:"service"`
	Cost    float64 `json:"cost"`
}

type createAccountRequest struct {
	AccountName string `json:"accountName"`
	Email       string `json:"email"`
	RoleName    string `json:"roleName"`
}

type CreateAccountResult struct {
	RequestID string `json:"requestId"`
}

// LinkedAccount summarizes a GovCloud account and its commercial twin.
type LinkedAccount struct {
	GovCloudAccountID   string `json:"govCloudAccountId"`
	CommercialAccountID string `json:"commercialAccountId"`
	AccountName         string `json:"accountName,omitempty"`
	Email               string `json:"email,omitempty"`
	Status              string `json:"status,omitempty"`
}

type listAccountsResponse struct {
	Accounts []LinkedAccount `json:"accounts"`
}

// AccountStatus mirrors the commercial partition's asynchronous creation status.
type AccountStatus struct {
	RequestID           string `json:"requestId,omitempty"`
	Status              string `json:"status"`
	GovCloudAccountID   string `json:"govCloudAccountId,omitempty"`
	CommercialAccountID string `json:"commercialAccountId,omitempty"`
	Message             string `json:"message,omitempty"`
}

type AcceptInvitationRequest struct {
	GovCloudAccountID         string `json:"govCloudAccountId"`
	HandshakeID               string `json:"handshakeId"`
	GovCloudRegion            string `json:"govCloudRegion"`
	CommercialLinkedAccountID string `json:"commercialLinkedAccountId"`
}

type AcceptInvitationResult struct {
	Message     string `json:"message,omitempty"`
	HandshakeID string `json:"handshakeId,omitempty"`
}
