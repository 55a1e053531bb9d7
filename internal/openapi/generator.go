// Package openapi builds the OpenAPI 3.1 description of the platform admin
// API as the console consumes it. The document is generated from the same
// path and schema knowledge the client is written against, so `adminctl
// openapi` always matches what the commands actually call.
package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the admin API document rooted at baseURL.
func Generate(baseURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Platform Admin API",
			Description: "Administrative REST API of the task and referral reward platform, as consumed by adminctl.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"bearerAuth": {}},
	}

	doc.Paths = openapi3.NewPaths()

	registerSchemas(doc)
	addSessionPaths(doc)
	addUserPaths(doc)
	addTaskPaths(doc)
	addWithdrawalPaths(doc)
	addReferralAndUpgradePaths(doc)
	addAdminPaths(doc)

	return doc
}

// ─── Component Schemas ──────────────────────────────────────────────────────

func registerSchemas(doc *openapi3.T) {
	s := doc.Components.Schemas

	s["ErrorResponse"] = objectSchema(props{
		"message": stringSchema("Human-readable error description."),
		"error":   stringSchema("Alternative error field used by older backend builds."),
	})

	s["Credentials"] = objectSchemaRequired(props{
		"email":    stringSchema("Administrator email."),
		"password": stringSchema("Administrator password."),
	}, "email", "password")

	s["LoginResult"] = objectSchema(props{
		"token":   stringSchema("Bearer token for all subsequent requests."),
		"message": stringSchema(""),
	})

	s["User"] = objectSchema(props{
		"_id":              stringSchema("Record identifier."),
		"name":             stringSchema(""),
		"username":         stringSchema(""),
		"email":            stringSchema(""),
		"phone":            stringSchema(""),
		"level":            intSchema("int32", "Membership level, 1-based."),
		"status":           enumSchema("active", "pending", "suspended", "verified"),
		"invites":          intSchema("int32", ""),
		"tasksCompleted":   intSchema("int32", ""),
		"registrationDate": dateTimeSchema(),
	})

	s["NewUser"] = objectSchemaRequired(props{
		"name":         stringSchema(""),
		"username":     stringSchema(""),
		"email":        stringSchema(""),
		"phone":        stringSchema(""),
		"password":     stringSchema(""),
		"referralCode": stringSchema("Optional referrer code."),
		"level":        intSchema("int32", "Membership level, 1-based."),
		"amount":       intSchema("int64", "Signup fee; must equal 15000 doubled per level above 1."),
	}, "name", "username", "email", "phone", "password", "level", "amount")

	s["Task"] = objectSchema(props{
		"_id":         stringSchema("Record identifier."),
		"title":       stringSchema(""),
		"link":        stringSchema(""),
		"completions": intSchema("int32", ""),
		"status":      enumSchema("active", "archived"),
	})

	s["NewTask"] = objectSchemaRequired(props{
		"title":  stringSchema("At least three characters."),
		"link":   stringSchema("Task URL; scheme optional."),
		"status": enumSchema("active", "archived"),
	}, "title", "link")

	s["Withdrawal"] = objectSchema(props{
		"_id":    stringSchema("Record identifier."),
		"userId": stringSchema("Requesting member."),
		"amount": intSchema("int64", ""),
		"date":   dateTimeSchema(),
		"status": enumSchema("pending", "approved", "declined", "paid"),
	})

	s["Referral"] = objectSchema(props{
		"user":          stringSchema(""),
		"referralCount": intSchema("int32", ""),
		"bonusPaid":     intSchema("int64", ""),
		"isSuspicious":  boolSchema("Flagged by the platform's referral fraud checks."),
	})

	s["Upgrade"] = objectSchema(props{
		"_id":    stringSchema("Record identifier."),
		"user":   stringSchema(""),
		"level":  intSchema("int32", "Target level."),
		"amount": intSchema("int64", "Payment; follows the level fee schedule."),
		"status": enumSchema("pending", "approved", "rejected"),
	})

	s["Admin"] = objectSchema(props{
		"_id":     stringSchema("Record identifier."),
		"email":   stringSchema(""),
		"contact": stringSchema(""),
		"avatar":  stringSchema(""),
	})

	s["ProfileUpdate"] = objectSchemaRequired(props{
		"email":    stringSchema(""),
		"password": stringSchema("Omit to keep the current password."),
		"contact":  stringSchema("At least ten digits."),
	}, "email", "contact")

	s["EmailLog"] = objectSchema(props{
		"type":      stringSchema("confirmation, password-reset, admin-invite, ..."),
		"recipient": stringSchema(""),
		"timestamp": dateTimeSchema(),
	})

	s["Broadcast"] = objectSchemaRequired(props{
		"message": stringSchema("Notification text pushed to all members."),
	}, "message")

	s["DashboardStats"] = objectSchema(props{
		"totalUsers":         intSchema("int64", ""),
		"totalEarnings":      intSchema("int64", ""),
		"totalTasks":         intSchema("int64", "Task completion count. Older builds emit taskCompletions."),
		"pendingWithdrawals": intSchema("int64", "Older builds emit totalWithdrawals."),
	})
}

// ─── Paths ──────────────────────────────────────────────────────────────────

func addSessionPaths(doc *openapi3.T) {
	loginOp := jsonOperation("session", "Log in", "login")
	loginOp.Security = &openapi3.SecurityRequirements{} // the one unauthenticated call
	loginOp.RequestBody = jsonBody("Credentials", true)
	loginOp.Responses = newResponses("200", "Session token", ref("LoginResult"))
	doc.Paths.Set("/api/admin/login", &openapi3.PathItem{Post: loginOp})

	getProfile := jsonOperation("session", "Get own profile", "get_profile")
	getProfile.Responses = newResponses("200", "Authenticated admin", ref("Admin"))

	putProfile := jsonOperation("session", "Update own profile", "update_profile")
	putProfile.RequestBody = jsonBody("ProfileUpdate", true)
	putProfile.Responses = newResponses("200", "Profile updated", ref("ErrorResponse"))

	doc.Paths.Set("/api/admin/profile", &openapi3.PathItem{Get: getProfile, Put: putProfile})

	statsOp := jsonOperation("dashboard", "Get dashboard counters", "dashboard_stats")
	statsOp.Responses = newResponses("200", "Aggregate counters", ref("DashboardStats"))
	doc.Paths.Set("/api/admin/dashboard-stats", &openapi3.PathItem{Get: statsOp})
}

func addUserPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/admin/users", &openapi3.PathItem{
		Get: listOperation("users", "User", "list_users"),
	})

	signup := jsonOperation("users", "Register a member", "create_user")
	signup.Security = &openapi3.SecurityRequirements{}
	signup.RequestBody = jsonBody("NewUser", true)
	signup.Responses = newResponses("201", "Member registered", ref("ErrorResponse"))
	doc.Paths.Set("/api/auth/signup", &openapi3.PathItem{Post: signup})

	doc.Paths.Set("/api/admin/users/pending-confirmations", &openapi3.PathItem{
		Get: listOperation("users", "User", "list_pending_confirmations"),
	})

	getUser := jsonOperation("users", "Get one user", "get_user")
	getUser.Responses = newResponses("200", "User record", ref("User"))
	deleteUser := messageOperation("users", "Delete a user", "delete_user")
	doc.Paths.Set("/api/admin/users/{userId}", &openapi3.PathItem{
		Get:        getUser,
		Delete:     deleteUser,
		Parameters: pathParam("userId"),
	})

	statusOp := messageOperation("users", "Change user status", "update_user_status")
	statusOp.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type:       &openapi3.Types{"object"},
					Properties: openapi3.Schemas{"status": enumSchema("active", "pending", "suspended", "verified")},
					Required:   []string{"status"},
				},
			}),
		},
	}
	doc.Paths.Set("/api/admin/users/{userId}/status", &openapi3.PathItem{
		Put:        statusOp,
		Parameters: pathParam("userId"),
	})

	for _, action := range []struct {
		path, summary, id string
	}{
		{"reset-password", "Send a password reset email", "reset_password"},
		{"confirm-email", "Confirm the user's email", "confirm_email"},
		{"resend-confirmation", "Resend the confirmation email", "resend_confirmation"},
	} {
		doc.Paths.Set("/api/admin/users/{userId}/"+action.path, &openapi3.PathItem{
			Post:       messageOperation("users", action.summary, action.id),
			Parameters: pathParam("userId"),
		})
	}
}

func addTaskPaths(doc *openapi3.T) {
	createOp := messageOperation("tasks", "Create a task", "create_task")
	createOp.RequestBody = jsonBody("NewTask", true)
	doc.Paths.Set("/api/admin/tasks", &openapi3.PathItem{
		Get:  listOperation("tasks", "Task", "list_tasks"),
		Post: createOp,
	})

	doc.Paths.Set("/api/admin/tasks/{taskId}", &openapi3.PathItem{
		Delete:     messageOperation("tasks", "Delete a task", "delete_task"),
		Parameters: pathParam("taskId"),
	})
	doc.Paths.Set("/api/admin/tasks/{taskId}/archive", &openapi3.PathItem{
		Post:       messageOperation("tasks", "Archive a task", "archive_task"),
		Parameters: pathParam("taskId"),
	})
	doc.Paths.Set("/api/admin/tasks/{taskId}/unarchive", &openapi3.PathItem{
		Post:       messageOperation("tasks", "Reactivate an archived task", "unarchive_task"),
		Parameters: pathParam("taskId"),
	})
}

func addWithdrawalPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/admin/withdrawals", &openapi3.PathItem{
		Get: listOperation("withdrawals", "Withdrawal", "list_withdrawals"),
	})
	for _, action := range []struct {
		path, summary, id string
	}{
		{"approve", "Approve a pending withdrawal", "approve_withdrawal"},
		{"decline", "Decline a pending withdrawal", "decline_withdrawal"},
		{"paid", "Mark an approved withdrawal as paid", "mark_withdrawal_paid"},
	} {
		doc.Paths.Set("/api/admin/withdrawals/{withdrawalId}/"+action.path, &openapi3.PathItem{
			Post:       messageOperation("withdrawals", action.summary, action.id),
			Parameters: pathParam("withdrawalId"),
		})
	}
}

func addReferralAndUpgradePaths(doc *openapi3.T) {
	doc.Paths.Set("/api/admin/referrals", &openapi3.PathItem{
		Get: listOperation("referrals", "Referral", "list_referrals"),
	})

	doc.Paths.Set("/api/admin/upgrades", &openapi3.PathItem{
		Get: listOperation("upgrades", "Upgrade", "list_upgrades"),
	})
	doc.Paths.Set("/api/admin/upgrades/{upgradeId}/approve", &openapi3.PathItem{
		Post:       messageOperation("upgrades", "Approve a pending upgrade", "approve_upgrade"),
		Parameters: pathParam("upgradeId"),
	})
	doc.Paths.Set("/api/admin/upgrades/{upgradeId}/reject", &openapi3.PathItem{
		Post:       messageOperation("upgrades", "Reject a pending upgrade", "reject_upgrade"),
		Parameters: pathParam("upgradeId"),
	})
}

func addAdminPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/admin/admins", &openapi3.PathItem{
		Get: listOperation("admins", "Admin", "list_admins"),
	})

	inviteOp := messageOperation("admins", "Invite an administrator", "invite_admin")
	inviteOp.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.NewContentWithJSONSchemaRef(&openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type:       &openapi3.Types{"object"},
					Properties: openapi3.Schemas{"email": stringSchema("")},
					Required:   []string{"email"},
				},
			}),
		},
	}
	doc.Paths.Set("/api/admin/invite", &openapi3.PathItem{Post: inviteOp})

	doc.Paths.Set("/api/admin/emails", &openapi3.PathItem{
		Get: listOperation("emails", "EmailLog", "list_emails"),
	})

	broadcastOp := messageOperation("notifications", "Broadcast a notification", "send_broadcast")
	broadcastOp.RequestBody = jsonBody("Broadcast", true)
	doc.Paths.Set("/api/admin/notifications", &openapi3.PathItem{Post: broadcastOp})
}

// ─── Builders ───────────────────────────────────────────────────────────────

type props = map[string]*openapi3.SchemaRef

func objectSchema(p props) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: openapi3.Schemas(p),
		},
	}
}

func objectSchemaRequired(p props, required ...string) *openapi3.SchemaRef {
	sr := objectSchema(p)
	sr.Value.Required = required
	return sr
}

func stringSchema(description string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Description: description},
	}
}

func intSchema(format, description string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: format, Description: description},
	}
}

func boolSchema(description string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}, Description: description},
	}
}

func dateTimeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
	}
}

func enumSchema(values ...string) *openapi3.SchemaRef {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Enum: enum},
	}
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func jsonBody(schemaName string, required bool) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: required,
			Content:  openapi3.NewContentWithJSONSchemaRef(ref(schemaName)),
		},
	}
}

func jsonOperation(tag, summary, operationID string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     summary,
		OperationID: operationID,
	}
}

// listOperation describes a GET returning the full record array. The API has
// no pagination; consoles fetch wholesale and filter locally.
func listOperation(tag, schemaName, operationID string) *openapi3.Operation {
	op := jsonOperation(tag, fmt.Sprintf("List all %s records", schemaName), operationID)
	op.Responses = newResponses("200", "Record list", &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: ref(schemaName),
		},
	})
	return op
}

// messageOperation describes a mutation answering with a message envelope.
func messageOperation(tag, summary, operationID string) *openapi3.Operation {
	op := jsonOperation(tag, summary, operationID)
	op.Responses = newResponses("200", "Operation outcome", ref("ErrorResponse"))
	return op
}

func pathParam(name string) openapi3.Parameters {
	p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
	return openapi3.Parameters{&openapi3.ParameterRef{Value: p}}
}

// newResponses builds a Responses map with a success response and the
// standard error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := ref("ErrorResponse")
	for code, desc := range map[string]string{
		"400": "Bad request",
		"401": "Unauthorized",
		"404": "Not found",
		"500": "Internal server error",
	} {
		d := desc
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}
