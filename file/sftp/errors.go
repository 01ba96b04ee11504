package sftp

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

const TextCodeSSHInactive = "file_ssh_inactive"

// ErrUnableToPerformSftpAction wraps every connection, session and file
// operation failure.
var ErrUnableToPerformSftpAction = errors.New("unable to perform action on the external file server", errors.CategoryExternal).
	WithTextCode(i18n.KeyUnableToPerformSftp).
	WithCode(http.StatusServiceUnavailable)

// ErrSSHInactive is returned by Connector.Do when jmpsl.file.ssh.active is
// false.
var ErrSSHInactive = errors.New("ssh connection is disabled", errors.CategoryOperation).
	WithTextCode(TextCodeSSHInactive).
	WithCode(http.StatusServiceUnavailable)
