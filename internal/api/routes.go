package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazcedarlink"

	ParsePolicyRoute = "/v1/policy/parse"
	LinkPolicyRoute  = "/v1/policy/link"
	JSONPolicyRoute  = "/v1/policy/json"

	PoliciesParent    = "/v1/policies/"
	ListPoliciesRoute = PoliciesParent
	GetPolicyRoute    = PoliciesParent + "{id}"

	AuditParent     = "/v1/audit/"
	ListAuditsRoute = AuditParent + "entries"
	ExplainRoute    = AuditParent + "explain"

	SourceSyncRoute = "/v1/source/sync"

	TaskParent       = "/v1/tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)
