package query

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

type GetUser struct {
	txFactory interfaces.TxFactory
}

func NewGetUser(txFactory interfaces.TxFactory) *GetUser {
	return &GetUser{txFactory: txFactory}
}

func (c *GetUser) Query(ctx context.Context, id uuid.UUID) (user *entity.User, err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	user, err = tx.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFoundError{Msg: "User not found"}
		}
		return nil, err
	}
	return user, nil
}
