package domain

// OTPIssued is the issuance event published once per generated OTP.
// It carries the OTP value itself so subscribers never have to read the
// transient store. Field names match the wire payload consumed by the
// notifier process.
type OTPIssued struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}
