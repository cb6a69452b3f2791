package absence

import "context"

type AbsenceService interface {
	Create(ctx context.Context, req CreateAbsenceRequest) (AbsenceResponse, error)
	Approve(ctx context.Context, id string, req DecisionRequest) (AbsenceResponse, error)
	Reject(ctx context.Context, id string, req DecisionRequest) (AbsenceResponse, error)
	Cancel(ctx context.Context, id string) (AbsenceResponse, error)
	Get(ctx context.Context, id string) (AbsenceResponse, error)
	ListMine(ctx context.Context, req ListAbsenceRequest) (ListAbsenceResponse, error)
	List(ctx context.Context, req ListAbsenceRequest) (ListAbsenceResponse, error)
}
