package httpapi

import (
	"time"

	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/rolegraph"
)

type rowResponse struct {
	RoleID int64  `json:"roleId"`
	Label  string `json:"label"`
	Group  string `json:"group"`
}

type groupResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Admin       bool   `json:"admin"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
}

type edgeResponse struct {
	RoleID  int64   `json:"roleId"`
	Targets []int64 `json:"targets"`
}

type graphResponse struct {
	UserRoles      []rowResponse   `json:"userRoles"`
	ModuleLicenses []rowResponse   `json:"moduleLicenses"`
	Groups         []groupResponse `json:"groups"`
	Dependencies   []edgeResponse  `json:"dependencies"`
	Parents        []edgeResponse  `json:"parents"`
	Script         string          `json:"script"`
}

func toGraphResponse(model rolegraph.RenderModel) graphResponse {
	out := graphResponse{
		UserRoles:      toRows(model.Bucket(rolegraph.BucketAdmin)),
		ModuleLicenses: toRows(model.Bucket(rolegraph.BucketOther)),
		Groups:         make([]groupResponse, 0, len(model.Groups)),
		Dependencies:   toEdges(model.Dependencies),
		Parents:        toEdges(model.Parents),
		Script:         model.Script.String(),
	}
	for _, group := range model.Groups {
		out.Groups = append(out.Groups, groupResponse{
			Name:        group.Name,
			Description: group.Description,
			Admin:       group.Admin,
			Min:         group.Min,
			Max:         group.Max,
		})
	}
	return out
}

func toRows(rows []rolegraph.Row) []rowResponse {
	out := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowResponse{RoleID: row.RoleID, Label: row.Label, Group: row.Group})
	}
	return out
}

func toEdges(edges []rolegraph.Edge) []edgeResponse {
	out := make([]edgeResponse, 0, len(edges))
	for _, edge := range edges {
		out = append(out, edgeResponse{RoleID: edge.RoleID, Targets: edge.Targets})
	}
	return out
}

type skippedResponse struct {
	Index  int    `json:"index"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

type submitResponse struct {
	TransactionID string            `json:"transactionId"`
	Action        string            `json:"action"`
	Inserted      int               `json:"inserted"`
	Skipped       []skippedResponse `json:"skipped"`
}

func toSubmitResponse(result command.SubmitRoleJobsResult) submitResponse {
	out := submitResponse{
		TransactionID: result.TransactionID,
		Action:        string(result.Action),
		Inserted:      len(result.Jobs),
		Skipped:       make([]skippedResponse, 0, len(result.Skipped)),
	}
	for _, skipped := range result.Skipped {
		out.Skipped = append(out.Skipped, skippedResponse(skipped))
	}
	return out
}

type jobResponse struct {
	ID                string    `json:"id"`
	TransactionID     string    `json:"transactionId"`
	CreatedByOfficeID int64     `json:"createdByOfficeId"`
	CreatedByUserID   int64     `json:"createdByUserId"`
	CreatedOn         time.Time `json:"createdOn"`
	Action            string    `json:"action"`
	Roles             string    `json:"roles"`
	OfficeID          int64     `json:"officeId"`
	UserID            int64     `json:"userId"`
	Status            string    `json:"status"`
}

type jobsResponse struct {
	Jobs       []jobResponse `json:"jobs"`
	Total      int           `json:"total"`
	NextOffset int           `json:"nextOffset"`
	HasMore    bool          `json:"hasMore"`
}

func toJobsResponse(page types.JobPage) jobsResponse {
	out := jobsResponse{
		Jobs:       make([]jobResponse, 0, len(page.Jobs)),
		Total:      page.Total,
		NextOffset: page.NextOffset,
		HasMore:    page.HasMore,
	}
	for _, job := range page.Jobs {
		out.Jobs = append(out.Jobs, jobResponse{
			ID:                job.ID.String(),
			TransactionID:     job.TransactionID,
			CreatedByOfficeID: job.CreatedByOfficeID,
			CreatedByUserID:   job.CreatedByUserID,
			CreatedOn:         job.CreatedOn,
			Action:            string(job.Action),
			Roles:             job.Roles,
			OfficeID:          job.OfficeID,
			UserID:            job.UserID,
			Status:            string(job.Status),
		})
	}
	return out
}
