package models

// ChallengeEvent is the trigger payload the identity pipeline posts to each
// phase endpoint. The service fills Response and echoes the event back;
// everything else is passed through opaquely.
type ChallengeEvent struct {
	Version       string            `json:"version,omitempty"`
	UserName      string            `json:"userName"      validate:"required,max=254"`
	UserPoolID    string            `json:"userPoolId,omitempty"`
	CallerContext CallerContext     `json:"callerContext,omitempty"`
	Request       ChallengeRequest  `json:"request"`
	Response      ChallengeResponse `json:"response"`
}

type CallerContext struct {
	ClientID string `json:"clientId,omitempty"`
}

type ChallengeRequest struct {
	Session                    []SessionRound    `json:"session"`
	UserAttributes             map[string]string `json:"userAttributes,omitempty"`
	PrivateChallengeParameters map[string]string `json:"privateChallengeParameters,omitempty"`
	ChallengeAnswer            string            `json:"challengeAnswer,omitempty"`
}

// SessionRound is one completed round of the accumulating transcript.
type SessionRound struct {
	ChallengeName     string `json:"challengeName"`
	ChallengeResult   bool   `json:"challengeResult"`
	ChallengeMetadata string `json:"challengeMetadata,omitempty"`
}

type ChallengeResponse struct {
	// Define phase.
	ChallengeName      string `json:"challengeName,omitempty"`
	IssueTokens        *bool  `json:"issueTokens,omitempty"`
	FailAuthentication *bool  `json:"failAuthentication,omitempty"`

	// Create phase.
	PublicChallengeParameters  map[string]string `json:"publicChallengeParameters,omitempty"`
	PrivateChallengeParameters map[string]string `json:"privateChallengeParameters,omitempty"`
	ChallengeMetadata          string            `json:"challengeMetadata,omitempty"`

	// Verify phase.
	AnswerCorrect *bool `json:"answerCorrect,omitempty"`
}

type PasswordResetInitiateBody struct {
	UserName     string `json:"userName"     validate:"required,max=254"`
	AccountScope string `json:"accountScope" validate:"required,max=128"`
}

type PasswordResetVerifyBody struct {
	UserName     string `json:"userName"     validate:"required,max=254"`
	AccountScope string `json:"accountScope" validate:"required,max=128"`
	OTP          string `json:"otp"          validate:"required,numeric,max=16"`
	NewPassword  string `json:"newPassword"  validate:"required,max=256"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
