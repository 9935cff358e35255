package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mfportal/internal/service"
)

const unreadableFormMessage = "The form submission could not be read."

// bindForm 读取 GET 查询参数或 POST 请求体，空请求体视为空表单
func bindForm(c *gin.Context, dst interface{}) bool {
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(dst)
	} else {
		err = c.ShouldBind(dst)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, service.FormResult{
			Errors:  map[string][]string{"Form": {unreadableFormMessage}},
			Message: unreadableFormMessage,
			State:   service.FormStateError,
		})
		return false
	}
	return true
}

// formValueBlank 判断字段是否以空值提交，表单绑定会把空数字当作 0
func formValueBlank(c *gin.Context, key string) bool {
	if c.Request.Method != http.MethodGet {
		if c.ContentType() == binding.MIMEJSON {
			return false
		}
		if raw, ok := c.GetPostForm(key); ok {
			return strings.TrimSpace(raw) == ""
		}
	}
	raw, ok := c.GetQuery(key)
	return ok && strings.TrimSpace(raw) == ""
}

func respondForm(c *gin.Context, result service.FormResult, err error) {
	if err != nil {
		respondInternal(c, err)
		return
	}
	if result.Failed() {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ContactUs 处理联系我们表单
func (a *API) ContactUs(c *gin.Context) {
	var form service.ContactFormRequest
	if !bindForm(c, &form) {
		return
	}
	result, err := a.forms.ContactUs(c.Request.Context(), form, a.requestInfo(c))
	respondForm(c, result, err)
}

// InvestorInquiry 处理投资意向表单
func (a *API) InvestorInquiry(c *gin.Context) {
	var form service.InvestorInquiryRequest
	if !bindForm(c, &form) {
		return
	}
	if formValueBlank(c, "lookingToInvest") {
		form.LookingToInvest = nil
	}
	result, err := a.forms.InvestorInquiry(c.Request.Context(), form, a.requestInfo(c))
	respondForm(c, result, err)
}

// NewsletterSubscriber 处理邮件订阅表单
func (a *API) NewsletterSubscriber(c *gin.Context) {
	var form service.NewsletterSubscriberRequest
	if !bindForm(c, &form) {
		return
	}
	result, err := a.forms.NewsletterSubscriber(c.Request.Context(), form, a.requestInfo(c))
	respondForm(c, result, err)
}

// ConfirmSubscriber 通过邮件中的确认链接激活订阅
func (a *API) ConfirmSubscriber(c *gin.Context) {
	result, err := a.forms.ConfirmSubscriber(c.Request.Context(), c.Param("code"))
	if errors.Is(err, service.ErrSubscriberNotFound) {
		c.JSON(http.StatusNotFound, service.FormResult{
			Message: "We could not find a subscription for this confirmation link.",
			State:   service.FormStateError,
		})
		return
	}
	respondForm(c, result, err)
}
