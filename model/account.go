package model

import "time"

type Account struct {
	Id            string    `json:"id"`
	OwnerId       string    `json:"ownerId"`
	WorkflowId    string    `json:"workflowId,omitempty"`
	Active        bool      `json:"active"`
	NotifyChannel string    `json:"notifyChannel,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ActiveAccount is the desired-state row the lifecycle reconciler works
// from: an active account with an assigned workflow plus the owner's
// notification channel, fetched in a single query.
type ActiveAccount struct {
	AccountId     string `json:"accountId"`
	OwnerId       string `json:"ownerId"`
	WorkflowId    string `json:"workflowId"`
	NotifyChannel string `json:"notifyChannel,omitempty"`
}
