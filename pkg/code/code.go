package code

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a Code into the failure families callers branch on
// Kind 将错误码归类为调用方可以区分处理的错误类型
type Kind int

const (
	KindNone Kind = iota
	// KindAuthentication bad, missing or expired credential
	// KindAuthentication 凭证无效、缺失或过期
	KindAuthentication
	// KindValidation malformed input
	// KindValidation 输入不合法
	KindValidation
	// KindNotFound entity absent or not owned by the caller
	// KindNotFound 实体不存在或不属于调用者
	KindNotFound
	// KindConflict uniqueness violation
	// KindConflict 唯一性冲突
	KindConflict
	// KindCycle folder re-parent would create a cycle
	// KindCycle 文件夹移动会产生环
	KindCycle
	// KindUnavailable transient storage failure, retryable
	// KindUnavailable 存储暂时不可用，可重试
	KindUnavailable
	// KindInternal unexpected server failure
	// KindInternal 服务器内部错误
	KindInternal
)

var kindNames = map[Kind]string{
	KindNone:           "None",
	KindAuthentication: "AuthenticationFailure",
	KindValidation:     "ValidationError",
	KindNotFound:       "NotFoundError",
	KindConflict:       "ConflictError",
	KindCycle:          "CycleError",
	KindUnavailable:    "UnavailableError",
	KindInternal:       "InternalError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误类型
	kind Kind
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError registers an error code, panics on duplicate numbers
// NewError 注册一个错误码，错误码重复时 panic
func NewError(code int, kind Kind, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.en
	return &Code{code: code, status: false, kind: kind, Lang: l}
}

var sussCodes = map[int]string{}

func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.en
	return &Code{code: code, status: true, kind: KindNone, Lang: l}
}

// Clone 创建一个新的 Code 副本，不携带 data 与 details
func (e *Code) Clone() *Code {
	return &Code{
		code:   e.code,
		status: e.status,
		kind:   e.kind,
		Lang:   e.Lang,
	}
}

func (e *Code) Error() string {
	if e.haveDetails && len(e.details) > 0 {
		return fmt.Sprintf("%s: %v", e.Lang.en, e.details)
	}
	return e.Lang.en
}

// Is reports whether target carries the same numeric code, so errors.Is
// matches clones produced by WithDetails and WithData
// Is 只比较数字错误码，使 errors.Is 可以匹配 WithDetails/WithData 产生的副本
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code && t.status == e.status
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Kind() Kind {
	return e.kind
}

// Msg returns the default (English) message
// Msg 返回默认（英文）消息
func (e *Code) Msg() string {
	return e.Lang.GetMessage(FALLBACK_LNG)
}

// MsgIn returns the message in the requested language
// MsgIn 返回指定语言的消息
func (e *Code) MsgIn(language string) string {
	return e.Lang.GetMessage(language)
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData returns a copy carrying data, keeping existing details
// WithData 返回携带数据的副本，保留已有详情
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.details = e.details
	c.haveDetails = e.haveDetails
	c.haveData = true
	c.data = data
	return c
}

// WithDetails returns a copy carrying details
// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.data = e.data
	c.haveData = e.haveData
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

func (e *Code) StatusCode() int {
	return http.StatusOK
}

// KindOf returns the Kind of the first *Code in err's chain,
// KindInternal for any other non-nil error and KindNone for nil
// KindOf 返回错误链中第一个 *Code 的类型，其他非空错误为 KindInternal，nil 为 KindNone
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var c *Code
	if errors.As(err, &c) {
		return c.kind
	}
	return KindInternal
}

// IsKind reports whether err belongs to kind
// IsKind 判断错误是否属于指定类型
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
