package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind string

const (
	KindValidation          Kind = "ValidationError"
	KindIllegalTransition   Kind = "IllegalTransition"
	KindWrongState          Kind = "WrongState"
	KindNotFound            Kind = "NotFound"
	KindAlreadyVoted        Kind = "AlreadyVoted"
	KindAlreadyReleased     Kind = "AlreadyReleased"
	KindNotApproved         Kind = "NotApproved"
	KindNotCreator          Kind = "NotCreator"
	KindNotABacker          Kind = "NotABacker"
	KindUnauthorizedOracle  Kind = "UnauthorizedOracle"
	KindUnauthorized        Kind = "Unauthorized"
	KindMilestoneNotVotable Kind = "MilestoneNotVotable"
	KindInsufficientEscrow  Kind = "InsufficientEscrow"
	KindGatewayError        Kind = "GatewayError"
	KindGatewayTimeout      Kind = "GatewayTimeout"
)

// Error 带分类的业务错误，跨层传递时保留分类信息
type Error struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New 创建业务错误
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并附加分类
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf 提取错误分类，非业务错误返回空串
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is 判断错误是否属于指定分类
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable 网关类错误可携带同一幂等键重试
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindGatewayError, KindGatewayTimeout:
		return true
	}
	return false
}

// HTTPStatus 错误分类到HTTP状态码的映射
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotCreator, KindNotABacker, KindUnauthorizedOracle, KindUnauthorized:
		return http.StatusForbidden
	case KindIllegalTransition, KindWrongState, KindAlreadyVoted,
		KindAlreadyReleased, KindNotApproved, KindMilestoneNotVotable:
		return http.StatusConflict
	case KindInsufficientEscrow:
		return http.StatusConflict
	case KindGatewayError:
		return http.StatusBadGateway
	case KindGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
