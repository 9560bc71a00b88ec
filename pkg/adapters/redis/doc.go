// Package redis stores calculator sessions in Redis and coordinates replicas with a SET NX lock.
package redis
