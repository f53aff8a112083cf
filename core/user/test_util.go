package user

import (
	"github.com/darisacademy/daris/core"
)

// NewServiceMock returns a service wired for tests; emails go through the
// given (typically synchronous) mail service.
func NewServiceMock(repo Repository, mailSvc core.EmailService) ServiceInterface {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    core.Conf,
	}
}
