package model

// Operation names used as fault-injection keys. Each façade method consults
// the fault injector under its own name before touching state.
const (
	OpFindInstanceID    = "findInstanceId"
	OpGetInstanceState  = "getInstanceState"
	OpStartInstance     = "startInstance"
	OpStopInstance      = "stopInstance"
	OpResumeInstance    = "resumeInstance"
	OpHibernateInstance = "hibernateInstance"
	OpTerminateInstance = "terminateInstance"
	OpExecuteCommand    = "executeCommand"
	OpListBackups       = "listBackups"
	OpGetParameter      = "getParameter"
	OpSetParameter      = "setParameter"
	OpGetCosts          = "getCosts"
	OpGetStackStatus    = "getStackStatus"
)

var allOperations = []string{
	OpFindInstanceID,
	OpGetInstanceState,
	OpStartInstance,
	OpStopInstance,
	OpResumeInstance,
	OpHibernateInstance,
	OpTerminateInstance,
	OpExecuteCommand,
	OpListBackups,
	OpGetParameter,
	OpSetParameter,
	OpGetCosts,
	OpGetStackStatus,
}

// AllOperations returns the façade operation names in a stable order.
func AllOperations() []string {
	return append([]string(nil), allOperations...)
}
