package loanappl

const (
	RoleLoanApprover = "Loan Approver"
	RoleLoanManager  = "Loan Manager"
	RoleLoanUser     = "Loan User"
)

var (
	approvalRoles = []string{RoleLoanApprover, RoleLoanManager}
	loanRoles     = []string{RoleLoanApprover, RoleLoanManager, RoleLoanUser}
)

// Actor is the authenticated user editing the record.
type Actor struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the actor holds any of roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, have := range a.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (a Actor) CanApprove() bool { return a.HasRole(approvalRoles...) }

func (a Actor) CanManageLoans() bool { return a.HasRole(loanRoles...) }

func (a Actor) IsOwner(rec *Application) bool { return a.ID != "" && a.ID == rec.Owner }
