package errors

const errorPrefix = "FSB-"

var (
	// Server error codes

	ErrWhileLoadingSyncState = ErrorMessage{
		Code:        errorPrefix + "15001",
		Message:     "Error while loading sync state.",
		Description: "Error while reading the persisted cursor and dedup sets.",
	}

	ErrWhileSavingSyncState = ErrorMessage{
		Code:        errorPrefix + "15002",
		Message:     "Error while saving sync state.",
		Description: "Error while persisting the cursor and dedup sets.",
	}

	ErrWhileListingChangedEntities = ErrorMessage{
		Code:        errorPrefix + "15003",
		Message:     "Error while listing changed entities.",
		Description: "Error while querying the field service API for entities edited inside the lookback window.",
	}

	ErrWhileFetchingEntity = ErrorMessage{
		Code:        errorPrefix + "15004",
		Message:     "Error while fetching entity.",
		Description: "Error while fetching a single record from the field service API.",
	}

	ErrWhileCreatingCompany = ErrorMessage{
		Code:        errorPrefix + "15005",
		Message:     "Error while creating company.",
		Description: "Error while creating a company record in the field service system.",
	}

	ErrWhileCreatingJob = ErrorMessage{
		Code:        errorPrefix + "15006",
		Message:     "Error while creating job.",
		Description: "Error while creating a job record in the field service system.",
	}

	ErrWhileCreatingContact = ErrorMessage{
		Code:        errorPrefix + "15007",
		Message:     "Error while creating CRM contact.",
		Description: "Error while creating a contact record in the CRM.",
	}

	ErrWhileLookingUpContact = ErrorMessage{
		Code:        errorPrefix + "15008",
		Message:     "Error while looking up CRM contact.",
		Description: "Error while searching the CRM for a contact by email.",
	}

	ErrWhileTriggeringWebhook = ErrorMessage{
		Code:        errorPrefix + "15009",
		Message:     "Error while triggering webhook.",
		Description: "Error while posting the payment notification webhook.",
	}

	ErrWhileRelayingAttachment = ErrorMessage{
		Code:        errorPrefix + "15010",
		Message:     "Error while relaying attachment.",
		Description: "Error while downloading or re-uploading a job photo.",
	}

	// Client error codes

	CreateJobBadRequest = ErrorMessage{
		Code:        errorPrefix + "16001",
		Message:     "Invalid job creation request.",
		Description: "The job creation request body could not be parsed.",
	}

	CreateJobMissingFields = ErrorMessage{
		Code:        errorPrefix + "16002",
		Message:     "Missing required fields.",
		Description: "The job creation request is missing mandatory contact or description fields.",
	}

	CreateJobDuplicate = ErrorMessage{
		Code:        errorPrefix + "16003",
		Message:     "Duplicate job creation request.",
		Description: "A job creation request with the same correlation id was received moments ago.",
	}
)
