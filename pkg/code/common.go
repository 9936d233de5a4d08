package code

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	ErrorInvalidParams   = NewError(400, KindValidation, lang{en: "Invalid params", zh_cn: "参数错误"})
	ErrorUserAuthFailed  = NewError(401, KindAuthentication, lang{en: "Authentication failed", zh_cn: "身份验证失败"})
	ErrorNotFoundAPI     = NewError(404, KindNotFound, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests = NewError(429, KindUnavailable, lang{en: "Too many requests", zh_cn: "请求过多"})

	ErrorUserLoginFailed         = NewError(410, KindAuthentication, lang{en: "Incorrect email or password", zh_cn: "邮箱或密码错误"})
	ErrorUserEmailAlreadyExists  = NewError(411, KindConflict, lang{en: "Email is already registered", zh_cn: "邮箱已被注册"})
	ErrorUserEmailNotValid       = NewError(412, KindValidation, lang{en: "Email format is not valid", zh_cn: "邮箱格式不正确"})
	ErrorUserPasswordNotValid    = NewError(413, KindValidation, lang{en: "Password must be at least 8 characters", zh_cn: "密码至少需要 8 个字符"})
	ErrorUserDisplayNameNotValid = NewError(414, KindValidation, lang{en: "Display name must be 2 to 100 characters", zh_cn: "昵称长度必须为 2 到 100 个字符"})
	ErrorUserRegisterIsDisable   = NewError(415, KindValidation, lang{en: "Registration is disabled", zh_cn: "注册已关闭"})
	ErrorUserOldPasswordFailed   = NewError(416, KindValidation, lang{en: "Old password is incorrect", zh_cn: "旧密码错误"})

	ErrorFolderNotFound    = NewError(420, KindNotFound, lang{en: "Folder not found", zh_cn: "文件夹不存在"})
	ErrorFolderNameInvalid = NewError(421, KindValidation, lang{en: "Folder name must be 1 to 100 characters", zh_cn: "文件夹名称长度必须为 1 到 100 个字符"})
	ErrorFolderNameExist   = NewError(422, KindConflict, lang{en: "A folder with this name already exists here", zh_cn: "同级目录下已存在同名文件夹"})
	ErrorFolderCycle       = NewError(423, KindCycle, lang{en: "Folder cannot be moved into itself or its descendants", zh_cn: "文件夹不能移动到自身或其子文件夹下"})

	ErrorNoteNotFound     = NewError(430, KindNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteContentEmpty = NewError(431, KindValidation, lang{en: "Note content cannot be empty", zh_cn: "笔记内容不能为空"})
	ErrorNoteTitleInvalid = NewError(432, KindValidation, lang{en: "Note title must be 1 to 200 characters", zh_cn: "笔记标题长度必须为 1 到 200 个字符"})
	ErrorSearchQueryEmpty = NewError(433, KindValidation, lang{en: "Search query cannot be empty", zh_cn: "搜索关键词不能为空"})

	ErrorServerInternal     = NewError(500, KindInternal, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorDBQuery            = NewError(501, KindInternal, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorTokenGenerate      = NewError(502, KindInternal, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"})
	ErrorStorageUnavailable = NewError(503, KindUnavailable, lang{en: "Storage is temporarily unavailable, please retry", zh_cn: "存储暂时不可用，请重试"})
	ErrorPasswordHash       = NewError(504, KindInternal, lang{en: "Failed to process password", zh_cn: "密码处理失败"})
)
